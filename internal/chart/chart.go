// Package chart renders a day's glucose series to a PNG image.
package chart

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/mrcode/nightscout-report/internal/models"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	width  = 960
	height = 360

	marginLeft   = 48.0
	marginRight  = 16.0
	marginTop    = 16.0
	marginBottom = 32.0

	// Fixed y scale so day-to-day images stay comparable
	maxBG = 400.0

	targetLow  = 70.0
	targetHigh = 180.0
)

// Render draws the report's chart series to a PNG. A report without
// readings produces an empty grid with a notice, never an error image.
func Render(rep *models.DailyReport) ([]byte, error) {
	dc := gg.NewContext(width, height)

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if err := loadFont(dc, 12); err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}

	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom

	// Target range band
	dc.SetRGBA(0.3, 0.69, 0.31, 0.15)
	dc.DrawRectangle(marginLeft, yFor(targetHigh, plotH), plotW, yFor(targetLow, plotH)-yFor(targetHigh, plotH))
	dc.Fill()

	// Horizontal gridlines and y labels every 100 mg/dL
	dc.SetRGBA(0, 0, 0, 0.15)
	dc.SetLineWidth(1)
	for bg := 0.0; bg <= maxBG; bg += 100 {
		y := yFor(bg, plotH)
		dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
		dc.Stroke()
		dc.SetRGB(0.4, 0.4, 0.4)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", bg), marginLeft-6, y, 1, 0.5)
		dc.SetRGBA(0, 0, 0, 0.15)
	}

	n := len(rep.ChartBGs)
	if n == 0 {
		dc.SetRGB(0.4, 0.4, 0.4)
		dc.DrawStringAnchored("no readings for this day", width/2, height/2, 0.5, 0.5)
		return encode(dc)
	}

	// Hour labels where the hour changes, as on the web chart
	dc.SetRGB(0.4, 0.4, 0.4)
	prevHour := ""
	for i, label := range rep.ChartTimes {
		hour := strings.SplitN(label, ":", 2)[0]
		if hour == prevHour {
			continue
		}
		prevHour = hour
		dc.DrawStringAnchored(hour, xFor(i, n, plotW), height-marginBottom+14, 0.5, 0.5)
	}

	// Value line
	dc.SetRGB255(102, 126, 234)
	dc.SetLineWidth(2)
	for i, bg := range rep.ChartBGs {
		dc.LineTo(xFor(i, n, plotW), yFor(float64(bg), plotH))
	}
	dc.Stroke()

	// Value points
	for i, bg := range rep.ChartBGs {
		dc.DrawCircle(xFor(i, n, plotW), yFor(float64(bg), plotH), 2.5)
		dc.Fill()
	}

	return encode(dc)
}

// loadFont helper to load font safely
func loadFont(dc *gg.Context, size float64) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	face := truetype.NewFace(font, &truetype.Options{Size: size})
	dc.SetFontFace(face)
	return nil
}

func xFor(i, n int, plotW float64) float64 {
	if n <= 1 {
		return marginLeft + plotW/2
	}
	return marginLeft + float64(i)*plotW/float64(n-1)
}

func yFor(bg float64, plotH float64) float64 {
	if bg > maxBG {
		bg = maxBG
	}
	if bg < 0 {
		bg = 0
	}
	return marginTop + plotH*(1-bg/maxBG)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}
	return buf.Bytes(), nil
}
