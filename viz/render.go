package viz

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func globalChartOptions(o PlotOptions) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: o.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: o.YLabel}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  o.Width,
			Height: o.Height,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	}
}

// outputPath derives an HTML file name from the title when none is set.
func outputPath(o PlotOptions) string {
	if o.OutputPath != "" {
		return o.OutputPath
	}
	name := strings.ToLower(o.Title)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.Trim(name, "_")
	if name == "" {
		name = "chart"
	}
	return name + ".html"
}

func renderChart(chart components.Charter, o PlotOptions) error {
	path := outputPath(o)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	page := components.NewPage()
	page.AddCharts(chart)
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if o.Open {
		if err := openInViewer(path); err != nil {
			return fmt.Errorf("failed to open chart: %w", err)
		}
	}
	return nil
}

// openInViewer opens path with the platform's default handler.
func openInViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
