package server

import (
	"github.com/gdpchart/models"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// generateBarChart builds the go-echarts version of the GDP chart. ECharts
// handles its own tooltip and resize, so only the data and axes are set here.
func generateBarChart(ds *models.Dataset) *charts.Bar {
	params := models.NewScaleParams(ds, models.DefaultWidth)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     "macarons",
			PageTitle: ds.Title(),
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    ds.Title(),
			Subtitle: ds.SourceName,
			SubLink:  ds.DisplayURL,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:            opts.Bool(true),
			Trigger:         "item",
			Formatter:       "{b}",
			BackgroundColor: "rgba(255, 255, 255, 0.9)",
			BorderColor:     "#ccc",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xAxisLabel,
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         yAxisLabel,
			NameLocation: "middle",
			NameGap:      50,
			Max:          params.GDPMax,
		}),
	)

	xAxis := make([]string, len(ds.Data))
	items := make([]opts.BarData, len(ds.Data))
	for i, p := range ds.Data {
		xAxis[i] = models.QuarterLabel(i, p)
		items[i] = opts.BarData{Name: models.TooltipLabel(i, p), Value: p.GDP}
	}

	bar.SetXAxis(xAxis).
		AddSeries("GDP", items, charts.WithBarChartOpts(opts.BarChart{
			BarCategoryGap: "0%",
		}))

	return bar
}
