package domain

import "time"

// WeeklySliceSize is the number of artists featured per week.
const WeeklySliceSize = 4

// WeekIndex returns the number of whole Monday-aligned weeks between the week
// containing epoch and the week containing date. Days are counted on the
// calendar of each value's own location, so DST shifts never move a boundary.
// The result is negative for dates before the epoch week.
func WeekIndex(epoch, date time.Time) int {
	days := daysBetween(mondayOf(epoch), mondayOf(date))
	return floorDiv(days, 7)
}

// SelectWeekly picks the rotating slice of size entries for the week of date.
// Week w starts at index (w*size) mod len(pool) and wraps around the pool.
func SelectWeekly[T any](pool []T, epoch, date time.Time, size int) []T {
	if len(pool) == 0 || size <= 0 {
		return nil
	}
	if size > len(pool) {
		size = len(pool)
	}

	start := floorMod(WeekIndex(epoch, date)*size, len(pool))
	out := make([]T, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, pool[(start+i)%len(pool)])
	}

	return out
}

// WeeklyIndices is SelectWeekly over positions, handy for logging and tests.
func WeeklyIndices(poolSize int, epoch, date time.Time, size int) []int {
	idx := make([]int, poolSize)
	for i := range idx {
		idx[i] = i
	}

	return SelectWeekly(idx, epoch, date, size)
}

// mondayOf returns the calendar date (as UTC midnight) of the Monday starting t's week.
func mondayOf(t time.Time) time.Time {
	day := civilDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6

	return day.AddDate(0, 0, -offset)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}

	return m
}
