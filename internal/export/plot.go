// Package export renders stored runs as image files.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/piddle/internal/storage"
)

var (
	measuredColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	targetColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	controlColor  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

const (
	figWidth  = 8 * vg.Inch
	figHeight = 4 * vg.Inch
)

// SaveRun writes two figures for a run: the measured output against the
// target at path, and the control signal next to it with a "_control"
// suffix. The format follows the extension (png, svg, pdf, ...). It returns
// the files written.
func SaveRun(path string, meta *storage.RunMetadata, s *storage.Series) ([]string, error) {
	if len(s.Times) < 2 || len(s.Measured) != len(s.Times) {
		return nil, errors.New("export: series too short to plot")
	}

	resp := plot.New()
	resp.Title.Text = fmt.Sprintf("%s  kp=%g ki=%g kd=%g", meta.Plant, meta.Kp, meta.Ki, meta.Kd)
	resp.X.Label.Text = "time (s)"
	resp.Y.Label.Text = "x0"
	resp.Add(plotter.NewGrid())

	measured, err := line(s.Times, s.Measured, measuredColor)
	if err != nil {
		return nil, err
	}
	target, err := line([]float64{s.Times[0], s.Times[len(s.Times)-1]}, []float64{meta.Target, meta.Target}, targetColor)
	if err != nil {
		return nil, err
	}
	target.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	resp.Add(measured, target)
	resp.Legend.Add("measured", measured)
	resp.Legend.Add("target", target)
	resp.Legend.Top = true

	if err := resp.Save(figWidth, figHeight, path); err != nil {
		return nil, err
	}
	written := []string{path}

	if len(s.Control) == 0 {
		return written, nil
	}

	ctl := plot.New()
	ctl.Title.Text = fmt.Sprintf("control, bounds [%g, %g]", meta.Lower, meta.Upper)
	ctl.X.Label.Text = "time (s)"
	ctl.Y.Label.Text = "u"
	ctl.Add(plotter.NewGrid())

	u, err := line(s.Times[:len(s.Control)], s.Control, controlColor)
	if err != nil {
		return nil, err
	}
	ctl.Add(u)

	ctlPath := withSuffix(path, "_control")
	if err := ctl.Save(figWidth, figHeight, ctlPath); err != nil {
		return written, err
	}
	return append(written, ctlPath), nil
}

func line(xs, ys []float64, c color.Color) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = vg.Points(1.5)
	return l, nil
}

func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
