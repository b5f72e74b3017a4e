// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fiscal provides date arithmetic for companies whose fiscal year
// closes in an arbitrary calendar month. All functions are pure and safe
// for concurrent use.
package fiscal

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidFiscalYearEnd = errors.New("fiscal year end month must be between 1 and 12")
)

// Calendar performs fiscal period math for a single fiscal-year-end month.
type Calendar struct {
	yearEnd time.Month
}

// NewCalendar returns a calendar whose fiscal year closes at the end of
// fyeMonth (1 = January ... 12 = December).
func NewCalendar(fyeMonth int) (Calendar, error) {
	if fyeMonth < 1 || fyeMonth > 12 {
		return Calendar{}, fmt.Errorf("%w: got %d", ErrInvalidFiscalYearEnd, fyeMonth)
	}

	return Calendar{yearEnd: time.Month(fyeMonth)}, nil
}

// MustCalendar is like NewCalendar but panics when fyeMonth is out of range.
func MustCalendar(fyeMonth int) Calendar {
	cal, err := NewCalendar(fyeMonth)
	if err != nil {
		panic(err)
	}

	return cal
}

// YearEndMonth returns the month in which the fiscal year closes
func (cal Calendar) YearEndMonth() time.Month {
	return cal.yearEnd
}

// FiscalYearEnd returns the last calendar day of the fiscal-year-end month
// in the given year
func (cal Calendar) FiscalYearEnd(year int) time.Time {
	return Date(year, cal.yearEnd, DaysIn(year, cal.yearEnd))
}

// QuarterOf returns the fiscal year and fiscal quarter (1-4) that date
// falls in. A date in a month after the fiscal-year-end month belongs to
// the next fiscal year.
func (cal Calendar) QuarterOf(date time.Time) (fiscalYear int, quarter int) {
	year := date.Year()
	month := int(date.Month())
	fye := int(cal.yearEnd)

	startMonth := (fye % 12) + 1

	fiscalYear = year
	if month > fye {
		fiscalYear = year + 1
	}

	var diff int
	if month >= startMonth {
		diff = month - startMonth
	} else {
		diff = month + 12 - startMonth
	}

	quarter = (diff / 3) + 1
	return fiscalYear, quarter
}

// QuarterEnd returns the last day of the given fiscal quarter
func (cal Calendar) QuarterEnd(fiscalYear int, quarter int) time.Time {
	fye := int(cal.yearEnd)
	targetMonth := ((fye + quarter*3 - 1) % 12) + 1

	targetYear := fiscalYear
	if targetMonth > fye {
		targetYear = fiscalYear - 1
	}

	month := time.Month(targetMonth)
	return Date(targetYear, month, DaysIn(targetYear, month))
}

// IsLeapYear reports whether year is a leap year in the Gregorian calendar
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Date returns midnight UTC of the given calendar day. Statement dates are
// compared as calendar days so every date in the module is normalized
// through Date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar day in UTC, keeping the wall clock date
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
