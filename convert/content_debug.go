package convert

import (
	"path/filepath"

	"figuremark/config"
	"figuremark/figure"
	"figuremark/utils/debug"
)

// storeFigureIndex puts list of rewritten figures into debug report.
func storeFigureIndex(rpt *config.Report, name string, res figure.Result) {
	if rpt == nil {
		return
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "document: %s", name)
	tw.Line(0, "figures: %d", res.Figures)
	tw.Line(0, "foreign: %d", res.Foreign)
	for _, e := range res.Index {
		tw.Line(1, "figure %d", e.Number)
		tw.Field(2, "id", e.ID)
		tw.Field(2, "title", e.Title)
		tw.List(2, "classes", e.Classes)
	}
	rpt.StoreData("figures/"+filepath.ToSlash(name)+".txt", []byte(tw.String()))
}
