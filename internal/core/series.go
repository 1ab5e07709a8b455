package core

import (
	"fmt"
	"math"
)

// MonthsPerYear is the fixed length of every series. Months are positional:
// index 0 is January and 11 is December, with no calendar awareness.
const MonthsPerYear = 12

// MonthLabels are the axis and tab labels, indexed like a Series.
var MonthLabels = [MonthsPerYear]string{
	"Jan.", "Feb.", "Mar.", "Apr.", "May", "Jun.",
	"Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec.",
}

// Series holds one value per month for a single category or for the budget.
type Series [MonthsPerYear]float64

// ValidMonth reports whether i is a usable month index.
func ValidMonth(i int) bool {
	return i >= 0 && i < MonthsPerYear
}

// CheckMonth returns ErrOutOfRange wrapped with the offending index.
func CheckMonth(i int) error {
	if !ValidMonth(i) {
		return fmt.Errorf("%w: month index %d", ErrOutOfRange, i)
	}
	return nil
}

// MonthLabel returns the short label for a month index, or "" when out of range.
func MonthLabel(i int) string {
	if !ValidMonth(i) {
		return ""
	}
	return MonthLabels[i]
}

// Fill returns a series with every month set to v.
func Fill(v float64) Series {
	var s Series
	for i := range s {
		s[i] = v
	}
	return s
}

// Validate rejects NaN and infinite entries.
func (s Series) Validate() error {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: month %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Slice returns the values as a fresh slice, the shape chart datasets use.
func (s Series) Slice() []float64 {
	out := make([]float64, MonthsPerYear)
	copy(out, s[:])
	return out
}
