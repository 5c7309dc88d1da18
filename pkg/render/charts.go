package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/recaplabs/recap-cli/pkg/analysis"
	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
)

// Chart palette.
var (
	chartBackground = color.RGBA{255, 255, 255, 255}
	chartAxis       = color.RGBA{120, 120, 120, 255}
	chartLine       = color.RGBA{54, 162, 235, 255}
	chartText       = color.RGBA{40, 40, 40, 255}
	gaugeRemainder  = color.RGBA{224, 224, 224, 255}

	gaugeColors = map[string]color.RGBA{
		ColorGood:    {76, 175, 80, 255},
		ColorAverage: {255, 152, 0, 255},
		ColorPoor:    {244, 67, 54, 255},
	}
)

// LineChart draws the ordered sentiment-trend segments as a line chart and
// writes it to path as a PNG. Scores are plotted on a fixed [0,1] axis so
// charts from different meetings are comparable.
func LineChart(trends []analysis.SentimentTrend, path string) error {
	if len(trends) == 0 {
		return fmt.Errorf("no trend segments to chart: %w", rerrors.ErrValidation)
	}

	const (
		width   = 640
		height  = 320
		marginL = 48
		marginR = 24
		marginT = 24
		marginB = 48
	)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(chartBackground), image.Point{}, draw.Src)

	plotW := width - marginL - marginR
	plotH := height - marginT - marginB

	// Axes.
	drawLine(img, marginL, marginT, marginL, height-marginB, chartAxis)
	drawLine(img, marginL, height-marginB, width-marginR, height-marginB, chartAxis)
	drawLabel(img, 8, marginT+6, "1.0", chartText)
	drawLabel(img, 8, height-marginB, "0.0", chartText)

	// Data points, evenly spaced across the plot width.
	xs := make([]int, len(trends))
	ys := make([]int, len(trends))
	for i, tr := range trends {
		frac := 0.5
		if len(trends) > 1 {
			frac = float64(i) / float64(len(trends)-1)
		}
		score := math.Max(0, math.Min(1, tr.Score))
		xs[i] = marginL + int(frac*float64(plotW))
		ys[i] = marginT + plotH - int(score*float64(plotH))
	}

	for i := 1; i < len(trends); i++ {
		drawLine(img, xs[i-1], ys[i-1], xs[i], ys[i], chartLine)
	}
	for i, tr := range trends {
		drawDot(img, xs[i], ys[i], 3, chartLine)
		drawLabel(img, xs[i]-len(tr.Segment)*3, height-marginB+16, tr.Segment, chartText)
		drawLabel(img, xs[i]-10, ys[i]-8, fmt.Sprintf("%.1f", tr.Score), chartText)
	}

	return writePNG(img, path)
}

// Gauge draws a semicircular gauge for a 0..10 effectiveness score and writes
// it to path as a PNG. The arc is split into two shares, score and 10-score,
// colored by the score's bucket and a neutral remainder.
func Gauge(score int, path string) error {
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	const (
		width  = 360
		height = 220
		outerR = 150.0
		innerR = 95.0
	)
	cx, cy := width/2, height-40

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(chartBackground), image.Point{}, draw.Src)

	filled := gaugeColors[GaugeColor(score)]
	fillFrac := float64(score) / 10

	// Rasterize the half ring: sweep left (score share) to right (remainder).
	for py := 0; py <= cy; py++ {
		for px := 0; px < width; px++ {
			dx := float64(px - cx)
			dy := float64(cy - py)
			dist := math.Hypot(dx, dy)
			if dist < innerR || dist > outerR {
				continue
			}
			angle := math.Atan2(dy, dx) // [0,pi] over the upper half
			frac := (math.Pi - angle) / math.Pi
			if frac <= fillFrac {
				img.SetRGBA(px, py, filled)
			} else {
				img.SetRGBA(px, py, gaugeRemainder)
			}
		}
	}

	label := FormatEffectiveness(score)
	drawLabel(img, cx-len(label)*4, cy-10, label, chartText)

	return writePNG(img, path)
}

func writePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	return nil
}

// drawLine rasterizes a line segment by stepping along its longer axis.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	steps := int(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0))))
	if steps == 0 {
		img.SetRGBA(x0, y0, col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		img.SetRGBA(x, y, col)
	}
}

func drawDot(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(cx+dx, cy+dy, col)
			}
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
