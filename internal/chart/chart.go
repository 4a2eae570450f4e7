// Package chart computes the coordinates of the statistics charts: y-axis
// ticks, bar heights and polyline points on a 1000x200 view box.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// View box of the line chart.
const (
	Width  = 1000.0
	Height = 200.0
)

// Point is one bucket (day, week or month) of a chart.
type Point struct {
	Label   string
	Income  float64
	Expense float64
}

// Series selects which value of a Point is plotted.
type Series int

const (
	IncomeSeries Series = iota
	ExpenseSeries
)

func (s Series) value(p Point) float64 {
	if s == IncomeSeries {
		return p.Income
	}
	return p.Expense
}

// MaxAmount is the largest income or expense across points. It is 0 for no
// points and 1 when every value is zero, so it can be divided by.
func MaxAmount(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	peak := 0.0
	for _, p := range points {
		peak = math.Max(peak, math.Max(p.Income, p.Expense))
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// YAxis returns tick values from the top of the axis down to 0. The top tick
// is at least peak.
func YAxis(peak float64) []float64 {
	if peak <= 0 {
		return []float64{0}
	}
	magnitude := math.Pow(10, math.Floor(math.Log10(peak)))
	step := magnitude / 2
	ticks := peak / step
	if ticks < 4 {
		step = magnitude / 4
	}
	if ticks > 8 {
		step = magnitude
	}

	var values []float64
	for i := 0; float64(i)*step <= peak; i++ {
		values = append(values, float64(i)*step)
	}
	if values[len(values)-1] < peak {
		values = append(values, math.Ceil(peak/step)*step)
	}
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

// Scale is the value at the top of the y axis for points; plotting against it
// keeps bars and lines aligned with the ticks.
func Scale(points []Point) float64 {
	return YAxis(MaxAmount(points))[0]
}

// BarHeight is v as a whole percentage of peak.
func BarHeight(v, peak float64) int {
	if peak == 0 {
		return 0
	}
	return int(math.Round(v / peak * 100))
}

// YPosition is the distance of v from the top, as a percentage of peak.
func YPosition(v, peak float64) float64 {
	if peak == 0 {
		return 100
	}
	return 100 - v/peak*100
}

// PointY is the height of v from the bottom, as a percentage of peak.
func PointY(v, peak float64) float64 {
	if peak == 0 {
		return 0
	}
	return v / peak * 100
}

// PointX is the horizontal centre of bucket i of n, as a percentage.
func PointX(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	w := 100 / float64(n)
	return float64(i)*w + w/2
}

// LinePoints renders an SVG polyline "points" attribute for one series.
func LinePoints(points []Point, s Series, peak float64) string {
	if len(points) == 0 {
		return ""
	}
	w := Width / float64(len(points))
	out := make([]string, len(points))
	for i, p := range points {
		x := float64(i)*w + w/2
		yPercent := 100.0
		if peak > 0 {
			yPercent = 100 - s.value(p)/peak*100
		}
		y := yPercent / 100 * Height
		out[i] = fmt.Sprintf("%s,%s", fixed(x, 1), fixed(y, 1))
	}
	return strings.Join(out, " ")
}

// Percentage is amount's whole-number share of total.
func Percentage(amount, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(amount / total * 100))
}

// AxisLabel abbreviates an axis amount with 억 (1e8), 만 (1e4) or 천 (1e3).
func AxisLabel(amount float64) string {
	switch {
	case amount >= 1e8:
		return strings.TrimSuffix(fixed(amount/1e8, 1), ".0") + "억"
	case amount >= 1e4:
		return fixed(amount/1e4, 0) + "만"
	case amount >= 1e3:
		return strings.TrimSuffix(fixed(amount/1e3, 1), ".0") + "천"
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// fixed formats v with digits decimals, rounding halves away from zero.
func fixed(v float64, digits int) string {
	p := math.Pow(10, float64(digits))
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', digits, 64)
}

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// DayLabel is the one-character Korean weekday of t.
func DayLabel(t time.Time) string { return weekdays[t.Weekday()] }

// WeekLabel renders "N주".
func WeekLabel(n int) string { return strconv.Itoa(n) + "주" }

// MonthLabel renders "N월".
func MonthLabel(n int) string { return strconv.Itoa(n) + "월" }
