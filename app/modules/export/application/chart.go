package exportservice

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palette colours the progression chart.
type Palette struct {
	Background   drawing.Color
	PlayerLine   drawing.Color
	OpponentLine drawing.Color
	Text         drawing.Color
}

var DefaultPalette = Palette{
	Background:   drawing.ColorFromHex("f5f1e8"),
	PlayerLine:   drawing.ColorFromHex("2f5d50"),
	OpponentLine: drawing.ColorFromHex("a23b2a"),
	Text:         drawing.ColorFromHex("1f1f1f"),
}

const noRoundsMessage = "No rounds recorded"

// RenderProgressionChart draws the cumulative player and opponent scores
// after each round. Both series start at zero before round one.
func RenderProgressionChart(snap *Snapshot, palette Palette) ([]byte, error) {
	if len(snap.Rounds) == 0 {
		return renderPlaceholder(palette)
	}

	n := len(snap.Rounds)
	xs := make([]float64, n+1)
	player := make([]float64, n+1)
	opponent := make([]float64, n+1)
	for i, r := range snap.Rounds {
		xs[i+1] = float64(r.Number)
		player[i+1] = player[i] + float64(r.PlayerScore)
		opponent[i+1] = opponent[i] + float64(r.OpponentScore)
	}
	top := max(player[n], opponent[n], 1)

	graph := chart.Chart{
		Width:      800,
		Height:     400,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis: chart.XAxis{
			Name:           "Round",
			ValueFormatter: chart.IntValueFormatter,
			Style:          chart.Style{FontColor: palette.Text},
			Range:          &chart.ContinuousRange{Min: 0, Max: xs[n]},
		},
		YAxis: chart.YAxis{
			Name:           "Cumulative score",
			ValueFormatter: chart.IntValueFormatter,
			Style:          chart.Style{FontColor: palette.Text},
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Player",
				XValues: xs,
				YValues: player,
				Style:   chart.Style{StrokeColor: palette.PlayerLine, StrokeWidth: 2, DotWidth: 4, DotColor: palette.PlayerLine},
			},
			chart.ContinuousSeries{
				Name:    "Opponent",
				XValues: xs,
				YValues: opponent,
				Style:   chart.Style{StrokeColor: palette.OpponentLine, StrokeWidth: 2, DotWidth: 4, DotColor: palette.OpponentLine},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPlaceholder draws the message over an invisible flat series, since
// go-chart refuses to render a chart without one.
func renderPlaceholder(palette Palette) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis:      chart.XAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Style{StrokeColor: palette.Background, StrokeWidth: 1},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(noRoundsMessage)
				r.Text(noRoundsMessage, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
