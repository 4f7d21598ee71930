package crosspath

import (
	"fmt"
	"image/color"
	"os"
	"strconv"

	"satanalysis/common"
	"satanalysis/evaluation"
	"satanalysis/savedata"

	"go-hep.org/x/hep/hplot"
	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

var (
	colorBlue   = color.RGBA{R: 0x0C, G: 0x5D, B: 0xA5, A: 0xff}
	colorGreen  = color.RGBA{R: 0x00, G: 0xB9, B: 0x45, A: 0xff}
	colorOrange = color.RGBA{R: 0xFF, G: 0x95, B: 0x00, A: 0xff}
	// line cycle of the flows
	flowColors = []color.Color{
		colorBlue,
		colorGreen,
		colorOrange,
		color.RGBA{R: 0xFF, G: 0x2C, B: 0x00, A: 0xff},
		color.RGBA{R: 0x84, G: 0x5B, B: 0x97, A: 0xff},
		color.RGBA{R: 0x47, G: 0x47, B: 0x47, A: 0xff},
		color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff},
	}
)

const (
	figWidth    = 18 * vg.Inch
	figHeight   = 6 * vg.Inch
	titleHeight = 0.4 * vg.Inch
)

// addGapLines draws every NaN free run of a series with one style, the legend gets the first run only
func addGapLines(p *plot.Plot, label string, c color.Color, time, values []float64) error {
	for j, xys := range evaluation.GapLines(time, values) {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = c
		p.Add(l)
		if j == 0 && label != "" {
			p.Legend.Add(label, l)
		}
	}
	return nil
}

func goodputPlot(exp *common.Experiment, r *common.ProtocolResult, last bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.Name
	p.Y.Label.Text = "Goodput (mbps)"
	p.Y.Tick.Marker = hplot.Ticks{N: 6, Format: "%.1f"}
	if last {
		p.X.Label.Text = "time (s)"
	}
	p.Add(plotter.NewGrid())
	for i, fg := range r.Flows {
		if err := addGapLines(p, "", flowColors[i%len(flowColors)], fg.Time, fg.Mean); err != nil {
			return nil, fmt.Errorf("%s flow %d: %w", r.Protocol, fg.Flow, err)
		}
	}
	p.X.Min = exp.Start
	p.X.Max = exp.End
	return p, nil
}

func fairnessPlot(exp *common.Experiment, r *common.ProtocolResult, last bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.Name
	p.Y.Label.Text = exp.MetricLabel()
	p.Y.Tick.Marker = hplot.Ticks{N: 6, Format: "%.2f"}
	if last {
		p.X.Label.Text = "Time (seconds)"
	}
	p.Add(plotter.NewGrid())
	fair := r.Fair
	series := []struct {
		label  string
		c      color.Color
		values []float64
	}{
		{"Fairness flows " + flowList(exp.Set1), colorBlue, fair.Set1},
		{"Fairness flows " + flowList(exp.Set2), colorGreen, fair.Set2},
		{"Fairness combined", colorOrange, fair.Combined},
	}
	for _, s := range series {
		if err := addGapLines(p, s.label, s.c, fair.Time, s.values); err != nil {
			return nil, fmt.Errorf("%s %s: %w", r.Protocol, s.label, err)
		}
	}
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	p.X.Min = exp.Start
	p.X.Max = exp.End
	return p, nil
}

func flowList(flows []int) string {
	s := ""
	for i, f := range flows {
		if i > 0 {
			s += ","
		}
		s += strconv.Itoa(f)
	}
	return s
}

// CrossPathPlot draws goodput (left) and fairness (right) of every protocol, one row each, into a pdf
func CrossPathPlot(exp *common.Experiment, results []*common.ProtocolResult) (err error) {
	rows := len(results)
	if rows == 0 {
		return fmt.Errorf("nothing to plot")
	}
	plots := make([][]*plot.Plot, rows)
	for i, r := range results {
		last := i == rows-1
		plots[i] = make([]*plot.Plot, 2)
		if plots[i][0], err = goodputPlot(exp, r, last); err != nil {
			return err
		}
		if plots[i][1], err = fairnessPlot(exp, r, last); err != nil {
			return err
		}
	}

	img := vgpdf.New(figWidth, figHeight)
	dc := draw.New(img)
	titleStyle := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(16)),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
	dc.FillText(titleStyle, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(4)}, exp.Title)
	body := draw.Crop(dc, 0, 0, 0, -titleHeight)
	t := draw.Tiles{
		Rows:      rows,
		Cols:      2,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align(plots, t, body)
	for r := 0; r < rows; r++ {
		for c := 0; c < 2; c++ {
			plots[r][c].Draw(canvases[r][c])
		}
	}
	w, err := os.Create(exp.Output)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()
	_, err = img.WriteTo(w)
	return err
}

// FairnessCDFPlot draws the distribution of all fairness values of each protocol
func FairnessCDFPlot(exp *common.Experiment, results []*common.ProtocolResult) error {
	pcdf := plot.New()
	pcdf.Title.Text = "CDF of fairness"
	lines := make([]interface{}, 0)
	for _, r := range results {
		values := make([]float64, 0, 3*len(r.Fair.Time))
		values = append(values, r.Fair.Set1...)
		values = append(values, r.Fair.Set2...)
		values = append(values, r.Fair.Combined...)
		ecdf := common.ECDF(values)
		if len(ecdf) == 0 {
			continue
		}
		lines = append(lines, r.Name, ecdf)
	}
	if len(lines) > 0 {
		if err := plotutil.AddLines(pcdf, lines...); err != nil {
			return err
		}
	}
	pcdf.Y.Min = 0
	pcdf.Y.Max = 1
	pcdf.Y.Label.Text = "CDF"
	pcdf.X.Label.Text = exp.MetricLabel()
	pcdf.Legend.Top = false
	pcdf.Legend.Left = true
	return pcdf.Save(6*vg.Inch, 4*vg.Inch, common.Getfilename(exp.Output)+".cdf.pdf")
}

// SaveResults exports the averaged goodput, the fairness series and the per segment summary
func SaveResults(exp *common.Experiment, results []*common.ProtocolResult) error {
	base := common.Getfilename(exp.Output)
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

	gpcsv := &savedata.SaveCSV{}
	if err := gpcsv.NewCSV(base + ".goodput.csv"); err != nil {
		return err
	}
	rowErr := gpcsv.AddOneToCSV([]string{"protocol", "flow", "runs", "time", "mean", "std"})
	for _, r := range results {
		for _, fg := range r.Flows {
			for i, t := range fg.Time {
				rowErr = multierr.Append(rowErr, gpcsv.AddOneToCSV([]string{r.Protocol, strconv.Itoa(fg.Flow), strconv.Itoa(fg.Runs), ftoa(t), ftoa(fg.Mean[i]), ftoa(fg.Std[i])}))
			}
		}
	}
	if err := multierr.Append(rowErr, gpcsv.CloseCSV()); err != nil {
		return err
	}

	faircsv := &savedata.SaveCSV{}
	if err := faircsv.NewCSV(base + ".fairness.csv"); err != nil {
		return err
	}
	rowErr = faircsv.AddOneToCSV([]string{"protocol", "segment", "time", "set1", "set2", "combined"})
	summaries := make([]common.ProtocolSummary, 0, len(results))
	for _, r := range results {
		fair := r.Fair
		for i, t := range fair.Time {
			rowErr = multierr.Append(rowErr, faircsv.AddOneToCSV([]string{r.Protocol, fair.Segment[i].String(), ftoa(t), ftoa(fair.Set1[i]), ftoa(fair.Set2[i]), ftoa(fair.Combined[i])}))
		}
		summaries = append(summaries, evaluation.Summarize(r.Protocol, exp.Metric, fair))
	}
	if err := multierr.Append(rowErr, faircsv.CloseCSV()); err != nil {
		return err
	}
	return savedata.SaveJSON(exp.Output, ".summary.json", summaries)
}
