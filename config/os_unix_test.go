//go:build !windows

package config

import "testing"

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "chapter", want: "chapter"},
		{in: "part/one:two", want: "partonetwo"},
		{in: "..hidden", want: "hidden"},
		{in: "tab\there", want: "tabhere"},
		{in: "Глава 1", want: "Глава 1"},
		{in: "..", want: "_bad_file_name_"},
		{in: "  ", want: "_bad_file_name_"},
		{in: "", want: "_bad_file_name_"},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
