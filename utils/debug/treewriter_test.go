package debug

import "testing"

func TestTreeWriter(t *testing.T) {
	tests := []struct {
		name  string
		write func(tw *TreeWriter)
		want  string
	}{
		{
			name:  "empty",
			write: func(*TreeWriter) {},
			want:  "",
		},
		{
			name: "line with formatting",
			write: func(tw *TreeWriter) {
				tw.Line(0, "%s = %d", "count", 5)
				tw.Line(2, "deep")
			},
			want: "count = 5\n    deep\n",
		},
		{
			name: "negative depth",
			write: func(tw *TreeWriter) {
				tw.Line(-1, "flat")
			},
			want: "flat\n",
		},
		{
			name: "fields",
			write: func(tw *TreeWriter) {
				tw.Field(1, "title", "Chart\tone")
				tw.Field(1, "empty", "")
			},
			want: "  title: \"Chart\\tone\"\n  empty: \n",
		},
		{
			name: "list",
			write: func(tw *TreeWriter) {
				tw.List(0, "classes", []string{"figuremark", "wide"})
				tw.List(0, "none", nil)
			},
			want: "classes: [figuremark wide]\nnone: []\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tt.write(tw)
			if got := tw.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
