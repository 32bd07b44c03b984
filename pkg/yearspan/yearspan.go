// Package yearspan provides inclusive year-range helpers used when aligning
// historical series and slicing rolling backtest windows.
package yearspan

import "fmt"

// Span is an inclusive range of calendar years.
type Span struct {
	First int
	Last  int
}

// New returns the span [first, last], normalizing a reversed pair.
func New(first, last int) Span {
	if last < first {
		first, last = last, first
	}
	return Span{First: first, Last: last}
}

// Length returns the number of years in the span.
func (s Span) Length() int {
	return s.Last - s.First + 1
}

// Contains reports whether year falls inside the span.
func (s Span) Contains(year int) bool {
	return year >= s.First && year <= s.Last
}

// String renders the span as "first-last".
func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.First, s.Last)
}

// Overlap returns the intersection of two spans. ok is false when the spans
// share no years.
func Overlap(a, b Span) (Span, bool) {
	first := a.First
	if b.First > first {
		first = b.First
	}
	last := a.Last
	if b.Last < last {
		last = b.Last
	}
	if last < first {
		return Span{}, false
	}
	return Span{First: first, Last: last}, true
}

// Windows returns every contiguous sub-span of the given length, stride 1,
// in ascending order of start year. It returns nil when the span is shorter
// than length or length is not positive.
func (s Span) Windows(length int) []Span {
	if length <= 0 || s.Length() < length {
		return nil
	}
	windows := make([]Span, 0, s.Length()-length+1)
	for first := s.First; first+length-1 <= s.Last; first++ {
		windows = append(windows, Span{First: first, Last: first + length - 1})
	}
	return windows
}
