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

package fiscal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type PeriodType string

const (
	Annual    PeriodType = "annual"
	Quarterly PeriodType = "quarterly"
)

var (
	ErrUnknownPeriodType = errors.New("unknown period type")
)

// ParsePeriodType converts a user supplied string (case-insensitive) into a PeriodType
func ParsePeriodType(periodType string) (PeriodType, error) {
	switch strings.ToLower(strings.TrimSpace(periodType)) {
	case string(Quarterly):
		return Quarterly, nil
	case string(Annual):
		return Annual, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriodType, periodType)
	}
}

// PriorYearOffset is the number of same-typed periods between a period and
// the period one year earlier
func (periodType PeriodType) PriorYearOffset() int {
	if periodType == Quarterly {
		return 4
	}
	return 1
}

// Period describes a single reporting window
type Period struct {
	EndDate       time.Time  `json:"period_end_date"`
	Type          PeriodType `json:"period_type"`
	FiscalYear    int        `json:"fiscal_year"`
	FiscalQuarter int        `json:"fiscal_quarter,omitempty"`
	Label         string     `json:"display_label"`
}

func (period Period) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Label", period.Label)
	e.Str("PeriodType", string(period.Type))
	e.Time("EndDate", period.EndDate)
	e.Int("FiscalYear", period.FiscalYear)
	if period.FiscalQuarter != 0 {
		e.Int("FiscalQuarter", period.FiscalQuarter)
	}
}

// Label formats the display label of a period: "FY{year}" for annual
// periods and the fourth fiscal quarter, "Q{quarter} {year}" otherwise.
func Label(periodType PeriodType, fiscalYear int, quarter int) string {
	if periodType == Annual || quarter == 4 || quarter == 0 {
		return fmt.Sprintf("FY%d", fiscalYear)
	}

	return fmt.Sprintf("Q%d %d", quarter, fiscalYear)
}

// Periods returns count reporting periods ending at or before asOf, newest
// first. Annual windows start at the fiscal year asOf falls in; quarterly
// windows start at the most recently completed fiscal quarter.
func (cal Calendar) Periods(count int, periodType PeriodType, asOf time.Time) []Period {
	if count <= 0 {
		return []Period{}
	}

	periods := make([]Period, 0, count)

	switch periodType {
	case Annual:
		year := asOf.Year()
		if asOf.Month() < cal.yearEnd {
			year--
		}

		for idx := 0; idx < count; idx++ {
			fiscalYear := year - idx
			periods = append(periods, Period{
				EndDate:    cal.FiscalYearEnd(fiscalYear),
				Type:       Annual,
				FiscalYear: fiscalYear,
				Label:      Label(Annual, fiscalYear, 0),
			})
		}
	default:
		year, quarter := cal.QuarterOf(asOf)
		if cal.QuarterEnd(year, quarter).After(Day(asOf)) {
			year, quarter = previousQuarter(year, quarter)
		}

		for idx := 0; idx < count; idx++ {
			periods = append(periods, Period{
				EndDate:       cal.QuarterEnd(year, quarter),
				Type:          Quarterly,
				FiscalYear:    year,
				FiscalQuarter: quarter,
				Label:         Label(Quarterly, year, quarter),
			})
			year, quarter = previousQuarter(year, quarter)
		}
	}

	return periods
}

// Ascending returns a copy of periods ordered oldest first
func Ascending(periods []Period) []Period {
	out := make([]Period, len(periods))
	copy(out, periods)

	sort.SliceStable(out, func(ii, jj int) bool {
		return out[ii].EndDate.Before(out[jj].EndDate)
	})

	return out
}

func previousQuarter(year, quarter int) (int, int) {
	if quarter == 1 {
		return year - 1, 4
	}
	return year, quarter - 1
}
