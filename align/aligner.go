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

// Package align maps raw statement records onto generated fiscal periods.
//
// Records are matched to periods by position rather than by date: the most
// recent income statements fill the most recent periods, and comparables are
// found by a fixed index offset into the sorted history. A missing quarter
// in the history therefore shifts every later prior-year comparable by one
// period.
package align

import (
	"sort"
	"time"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
)

// Statements is the raw, arbitrarily ordered input for a single company
type Statements struct {
	Income   []*data.IncomeStatement
	Balance  []*data.BalanceSheet
	CashFlow []*data.CashFlowStatement
	Prices   []*data.DailyPrice
}

// Align returns one bundle per period ordered oldest first. The period type
// is taken from the periods; statements of any other type are ignored. The
// input slices are not modified.
func Align(periods []fiscal.Period, statements Statements) []*Bundle {
	if len(periods) == 0 {
		return []*Bundle{}
	}

	ascending := fiscal.Ascending(periods)
	periodType := ascending[0].Type

	incomes := sortedIncome(statements.Income, periodType)
	prices := sortedPrices(statements.Prices)

	count := len(ascending)
	startIdx := len(incomes) - count
	if startIdx < 0 {
		startIdx = 0
	}

	current := incomes[startIdx:]

	// fewer records than periods leaves the oldest periods empty
	padding := count - len(current)

	bundles := make([]*Bundle, count)
	for idx := range ascending {
		bundles[idx] = &Bundle{Period: ascending[idx]}
	}

	offset := periodType.PriorYearOffset()
	for idx, inc := range current {
		bundle := bundles[padding+idx]
		bundle.Income = inc

		priorIdx := startIdx + idx - offset
		if priorIdx >= 0 {
			bundle.PriorYear = incomes[priorIdx]
		}

		if idx > 0 {
			bundle.PriorPeriod = current[idx-1]
		}

		bundle.Balance = balanceOn(statements.Balance, periodType, inc.PeriodEndDate)
		bundle.CashFlow = cashFlowOn(statements.CashFlow, periodType, inc.PeriodEndDate)
		bundle.Price = PriceOnOrBefore(prices, inc.PeriodEndDate)
	}

	return bundles
}

// PriceOnOrBefore returns the latest price dated on or before date. prices
// must be sorted ascending by date.
func PriceOnOrBefore(prices []*data.DailyPrice, date time.Time) *data.DailyPrice {
	day := fiscal.Day(date)
	idx := sort.Search(len(prices), func(ii int) bool {
		return fiscal.Day(prices[ii].Date).After(day)
	})

	if idx == 0 {
		return nil
	}

	return prices[idx-1]
}

func sortedIncome(records []*data.IncomeStatement, periodType fiscal.PeriodType) []*data.IncomeStatement {
	out := make([]*data.IncomeStatement, 0, len(records))
	for _, rec := range records {
		if rec != nil && rec.PeriodType == periodType {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(ii, jj int) bool {
		return fiscal.Day(out[ii].PeriodEndDate).Before(fiscal.Day(out[jj].PeriodEndDate))
	})

	return out
}

func balanceOn(records []*data.BalanceSheet, periodType fiscal.PeriodType, date time.Time) *data.BalanceSheet {
	for _, rec := range records {
		if rec != nil && rec.PeriodType == periodType && fiscal.SameDay(rec.PeriodEndDate, date) {
			return rec
		}
	}

	return nil
}

func cashFlowOn(records []*data.CashFlowStatement, periodType fiscal.PeriodType, date time.Time) *data.CashFlowStatement {
	for _, rec := range records {
		if rec != nil && rec.PeriodType == periodType && fiscal.SameDay(rec.PeriodEndDate, date) {
			return rec
		}
	}

	return nil
}

func sortedPrices(records []*data.DailyPrice) []*data.DailyPrice {
	out := make([]*data.DailyPrice, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(ii, jj int) bool {
		return fiscal.Day(out[ii].Date).Before(fiscal.Day(out[jj].Date))
	})

	return out
}
