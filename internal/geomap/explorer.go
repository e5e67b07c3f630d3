package geomap

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteExplorer renders an interactive page with province centroids
// coloured by cluster and a bar chart of cluster sizes.
func WriteExplorer(w io.Writer, title string, j *Join, profiles []string, colors []string) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d il eşleşti", j.Matched)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Boylam", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Enlem", Type: "value"}),
		charts.WithColorsOpts(opts.Colors(colors)),
	)

	groups := make(map[int][]opts.ScatterData)
	for _, p := range j.Provinces {
		if p.Cluster < 0 {
			continue
		}
		groups[p.Cluster] = append(groups[p.Cluster], opts.ScatterData{
			Name:  p.City,
			Value: []interface{}{p.Centroid.X(), p.Centroid.Y()},
		})
	}

	sizes := make([]opts.BarData, len(profiles))
	for c, name := range profiles {
		scatter.AddSeries(name, groups[c]).
			SetSeriesOptions(
				charts.WithLabelOpts(opts.Label{
					Show:     pointer(false),
					Position: "top",
				}),
			)
		sizes[c] = opts.BarData{Name: name, Value: len(groups[c])}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Küme Büyüklükleri"}),
		charts.WithColorsOpts(opts.Colors(colors)),
	)
	axis := make([]string, len(profiles))
	for c := range profiles {
		axis[c] = fmt.Sprintf("Küme %d", c)
	}
	bar.SetXAxis(axis).AddSeries("İl", sizes)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(scatter, bar)
	return page.Render(w)
}

func pointer(b bool) *bool {
	return &b
}
