package date

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// MonthFormat is the layout of a month key.
const MonthFormat = "2006-01"

// Month is a calendar month. Records are grouped by month through the
// "YYYY-MM" prefix of their date.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns a normalized Month, so that NewMonth(2024, 13) is January 2025.
func NewMonth(year int, month time.Month) Month {
	first := New(year, month, 1)
	return Month{first.y, first.m}
}

// ParseMonth parses a "YYYY-MM" month key. A full date is accepted too, its day is ignored.
func ParseMonth(str string) (Month, error) {
	str = strings.TrimSpace(str)
	if on, err := time.Parse("2006-1", str); err == nil {
		return NewMonth(on.Year(), on.Month()), nil
	}
	d, err := Parse(str)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q", str, MonthFormat)
	}
	return d.MonthOf(), nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// Year of the month.
func (m Month) Year() int { return m.y }

// Month of the year.
func (m Month) Month() time.Month { return m.m }

// Key returns the "YYYY-MM" key of the month.
func (m Month) Key() string { return fmt.Sprintf("%04d-%02d", m.y, int(m.m)) }

// String is the month key.
func (m Month) String() string { return m.Key() }

// First day of the month.
func (m Month) First() Date { return New(m.y, m.m, 1) }

// Last day of the month.
func (m Month) Last() Date { return New(m.y, m.m+1, 0) }

// Next month.
func (m Month) Next() Month { return NewMonth(m.y, m.m+1) }

// Prev month.
func (m Month) Prev() Month { return NewMonth(m.y, m.m-1) }

// Contains reports whether d falls in the month.
func (m Month) Contains(d Date) bool { return d.y == m.y && d.m == m.m }

// HasKey reports whether a canonical date string belongs to the month.
func (m Month) HasKey(canonical string) bool { return strings.HasPrefix(canonical, m.Key()) }

// Days iterates over every day of the month in order.
func (m Month) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := m.First(); m.Contains(d); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Len is the number of days in the month.
func (m Month) Len() int { return m.Last().Day() }
