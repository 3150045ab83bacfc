// Package plots renders the optional SVG diagnostics written next to each report.
package plots

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type IntegerTicks struct{}

func (IntegerTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	step := int(math.Max(1, math.Ceil((max-min)/10)))
	for i := int(math.Ceil(min)); i <= int(math.Floor(max)); i += step {
		ticks = append(ticks, plot.Tick{
			Value: float64(i),
			Label: fmt.Sprintf("%d", i),
		})
	}
	return ticks
}

// CountSpectrum plots how many k-mers (log scale) were seen each number of times.
func CountSpectrum(counts, cells []uint64, k int) ([]byte, error) {
	if len(counts) == 0 || len(counts) != len(cells) {
		return nil, fmt.Errorf("count spectrum needs matching, non-empty series")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d-mer Count Spectrum", k)
	p.X.Label.Text = "Times Observed"
	p.Y.Label.Text = "Distinct Peptides"
	p.X.Tick.Marker = IntegerTicks{}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min = 0.5 // keeps the log range open when every cell count is equal

	points := make(plotter.XYs, len(counts))
	for i := range counts {
		points[i].X = float64(counts[i])
		points[i].Y = float64(cells[i]) // always >= 1, safe for the log axis
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)

	// Nullomers sit at x=0; mark them so they are visible next to the line
	if counts[0] == 0 {
		nullomers, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: float64(cells[0])}})
		if err != nil {
			return nil, err
		}
		nullomers.GlyphStyle.Color = color.RGBA{R: 255, G: 100, B: 100, A: 255}
		nullomers.GlyphStyle.Radius = vg.Points(4)
		p.Add(nullomers)
		p.Legend.Add("Nullomers", nullomers)
	}
	p.Legend.Add("Peptides", line)
	p.Legend.Top = true

	return render(p, 10*vg.Inch, 4*vg.Inch)
}

// TopMotifs draws a bar chart of the highest scoring motifs, in the order given.
func TopMotifs(motifs []string, counts []uint64, title string) ([]byte, error) {
	if len(motifs) == 0 || len(motifs) != len(counts) {
		return nil, fmt.Errorf("motif chart needs matching, non-empty series")
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Weighted Matches"

	values := make(plotter.Values, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{B: 200, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(motifs...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -1.2 // keep rotated labels clear of the axis
	p.X.Tick.Label.YAlign = -0.5

	return render(p, 10*vg.Inch, 5*vg.Inch)
}

func render(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return nil, err
	}
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
