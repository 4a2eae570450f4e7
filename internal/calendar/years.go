package calendar

// yearRange is how far either side of the current year may be picked.
const yearRange = 50

// visibleSpan is how many years show on each side of the selection.
const visibleSpan = 3

// AvailableYears lists current-50 through current+50.
func AvailableYears(current int) []int {
	out := make([]int, 0, 2*yearRange+1)
	for y := current - yearRange; y <= current+yearRange; y++ {
		out = append(out, y)
	}
	return out
}

// YearWindow returns the years shown around selected: up to three on each
// side, clipped to the available range. A selection outside the range shows
// the first three years.
func YearWindow(current, selected int) []int {
	years := AvailableYears(current)
	idx := indexOf(years, selected)
	start := max(0, idx-visibleSpan)
	end := min(len(years), idx+visibleSpan+1)
	return years[start:end]
}

// ScrollYear moves selected by dir years without leaving the available range.
func ScrollYear(current, selected, dir int) int {
	years := AvailableYears(current)
	idx := indexOf(years, selected)
	idx = max(0, min(len(years)-1, idx+dir))
	return years[idx]
}

func indexOf(years []int, y int) int {
	if len(years) == 0 || y < years[0] || y > years[len(years)-1] {
		return -1
	}
	return y - years[0]
}
