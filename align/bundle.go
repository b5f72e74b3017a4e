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

package align

import (
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/rs/zerolog"
)

// Bundle groups the statements that describe one requested period along with
// the comparables used for growth calculations. Any member may be nil when
// the underlying data is missing.
type Bundle struct {
	Period fiscal.Period

	Income      *data.IncomeStatement
	PriorYear   *data.IncomeStatement
	PriorPeriod *data.IncomeStatement
	Balance     *data.BalanceSheet
	CashFlow    *data.CashFlowStatement
	Price       *data.DailyPrice
}

func (bundle *Bundle) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Period", bundle.Period.Label)
	e.Bool("HasIncome", bundle.Income != nil)
	e.Bool("HasPriorYear", bundle.PriorYear != nil)
	e.Bool("HasPriorPeriod", bundle.PriorPeriod != nil)
	e.Bool("HasBalance", bundle.Balance != nil)
	e.Bool("HasCashFlow", bundle.CashFlow != nil)
	e.Bool("HasPrice", bundle.Price != nil)
}

func (bundle *Bundle) Revenue() *float64 {
	return bundle.Income.Value(data.Revenue)
}

func (bundle *Bundle) PriorYearRevenue() *float64 {
	return bundle.PriorYear.Value(data.Revenue)
}

func (bundle *Bundle) PriorPeriodRevenue() *float64 {
	return bundle.PriorPeriod.Value(data.Revenue)
}

func (bundle *Bundle) GrossProfit() *float64 {
	return bundle.Income.Value(data.GrossProfit)
}

func (bundle *Bundle) OperatingIncome() *float64 {
	return bundle.Income.Value(data.OperatingIncome)
}

func (bundle *Bundle) NetIncome() *float64 {
	return bundle.Income.Value(data.NetIncome)
}

// EPS is the basic earnings per share reported for the period
func (bundle *Bundle) EPS() *float64 {
	return bundle.Income.Value(data.BasicEPS)
}

func (bundle *Bundle) NetDebt() *float64 {
	return bundle.Balance.Value(data.NetDebt)
}

// SharesOutstanding prefers the count reported with the income statement and
// falls back to the balance sheet
func (bundle *Bundle) SharesOutstanding() *float64 {
	if shares := bundle.Income.Value(data.SharesOutstanding); shares != nil {
		return shares
	}

	return bundle.Balance.Value(data.SharesOutstanding)
}

func (bundle *Bundle) OperatingCashFlow() *float64 {
	return bundle.CashFlow.Value(data.OperatingCashFlow)
}

func (bundle *Bundle) FreeCashFlow() *float64 {
	return bundle.CashFlow.Value(data.FreeCashFlow)
}

// PriceValue returns the requested field of the price in effect at the end
// of the period
func (bundle *Bundle) PriceValue(field data.Field) *float64 {
	return bundle.Price.Value(field)
}
