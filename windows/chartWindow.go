// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tabproc/datatable"
	"tabproc/store"
)

// ErrNoBars is returned when there is nothing to plot.
var ErrNoBars = errors.New("no values to plot")

var barColor = drawing.Color{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}

// ChartTitle is the title used for a bar chart of data.
func ChartTitle(data store.ChartData) string {
	return fmt.Sprintf("%s by %s", data.YName, data.XName)
}

// RenderBarChart draws one bar per row: the label from the x column and the
// height from the y column. Every value must be finite.
func RenderBarChart(data store.ChartData, width, height int) (image.Image, error) {
	if len(data.Values) == 0 {
		return nil, ErrNoBars
	}

	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, len(data.Values))
	for i, v := range data.Values {
		label := ""
		if i < len(data.Labels) {
			label = data.Labels[i]
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bar %d is %v", datatable.ErrNotNumeric, i+1, v)
		}
		bars[i] = chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	// leave room for the axis on the left and bar spacing
	barWidth := max(4, (width-100)*2/(3*len(bars)))
	spacing := max(2, barWidth/2)

	graph := chart.BarChart{
		Title:      ChartTitle(data),
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:           data.YName,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: axisValue,
		},
		UseBaseValue: lo < 0,
		BaseValue:    0,
		Bars:         bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}
	return img, nil
}

// axisValue formats y axis ticks without trailing zeros.
func axisValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', 6, 64)
	}
	return fmt.Sprintf("%v", v)
}

// showChart opens a window with the rendered chart.
func (t *MainWindow) showChart(title string, img image.Image) {
	w := t.a.NewWindow(title)

	picture := canvas.NewImageFromImage(img)
	picture.FillMode = canvas.ImageFillContain
	picture.SetMinSize(fyne.NewSize(float32(img.Bounds().Dx())/2, float32(img.Bounds().Dy())/2))

	w.SetContent(picture)
	w.Resize(fyne.NewSize(t.cfg.Chart.Width, t.cfg.Chart.Height))
	w.Show()

	t.chartWindow = w
}
