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

package data

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a nullable figure that can be looked up on a statement record
type Field string

const (
	Revenue             Field = "total_revenue"
	CostOfRevenue       Field = "cost_of_revenue"
	GrossProfit         Field = "gross_profit"
	OperatingIncome     Field = "operating_income"
	NetIncome           Field = "net_income"
	BasicEPS            Field = "basic_eps"
	DilutedEPS          Field = "diluted_eps"
	SharesOutstanding   Field = "shares_outstanding"
	TotalDebt           Field = "total_debt"
	NetDebt             Field = "net_debt"
	CashAndEquivalents  Field = "cash_and_equivalents"
	OperatingCashFlow   Field = "operating_cash_flow"
	CapitalExpenditures Field = "capital_expenditures"
	FreeCashFlow        Field = "free_cash_flow"
	Open                Field = "open"
	High                Field = "high"
	Low                 Field = "low"
	Close               Field = "close"
)

// Float converts a nullable decimal to a float. Null decimals and values
// that do not fit in a finite float64 return nil.
func Float(amount decimal.NullDecimal) *float64 {
	if !amount.Valid {
		return nil
	}

	val, _ := amount.Decimal.Float64()
	return finite(val)
}

// Int converts a nullable integer to a float
func Int(val *int64) *float64 {
	if val == nil {
		return nil
	}

	return finite(float64(*val))
}

// Amount wraps a float as a non-null decimal
func Amount(val float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(val))
}

// ParseAmount parses a figure as reported by a data vendor. Empty strings
// and vendor placeholders such as "None" or "-" are null.
func ParseAmount(val string) decimal.NullDecimal {
	val = strings.TrimSpace(val)
	switch strings.ToLower(val) {
	case "", "none", "null", "-", "n/a", "nan":
		return decimal.NullDecimal{}
	}

	amount, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(amount)
}

// ParseShares parses a share count; fractional counts are truncated
func ParseShares(val string) *int64 {
	amount := ParseAmount(val)
	if !amount.Valid {
		return nil
	}

	shares := amount.Decimal.IntPart()
	return &shares
}

// Sub returns a - b, or null when either operand is null
func Sub(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(a.Decimal.Sub(b.Decimal))
}

// Value looks up field on the income statement; a nil statement or a null
// field returns nil
func (inc *IncomeStatement) Value(field Field) *float64 {
	if inc == nil {
		return nil
	}

	switch field {
	case Revenue:
		return Float(inc.TotalRevenue)
	case CostOfRevenue:
		return Float(inc.CostOfRevenue)
	case GrossProfit:
		return Float(inc.GrossProfit)
	case OperatingIncome:
		return Float(inc.OperatingIncome)
	case NetIncome:
		return Float(inc.NetIncome)
	case BasicEPS:
		return Float(inc.BasicEPS)
	case DilutedEPS:
		return Float(inc.DilutedEPS)
	case SharesOutstanding:
		return Int(inc.SharesOutstanding)
	}

	return nil
}

// Value looks up field on the balance sheet; a nil statement or a null
// field returns nil
func (bal *BalanceSheet) Value(field Field) *float64 {
	if bal == nil {
		return nil
	}

	switch field {
	case TotalDebt:
		return Float(bal.TotalDebt)
	case NetDebt:
		return Float(bal.NetDebt)
	case CashAndEquivalents:
		return Float(bal.CashAndEquivalents)
	case SharesOutstanding:
		return Int(bal.SharesOutstanding)
	}

	return nil
}

// Value looks up field on the cash flow statement; a nil statement or a
// null field returns nil
func (cf *CashFlowStatement) Value(field Field) *float64 {
	if cf == nil {
		return nil
	}

	switch field {
	case OperatingCashFlow:
		return Float(cf.OperatingCashFlow)
	case CapitalExpenditures:
		return Float(cf.CapitalExpenditures)
	case FreeCashFlow:
		return Float(cf.FreeCashFlow)
	}

	return nil
}

// Value looks up a price field; a nil price returns nil
func (price *DailyPrice) Value(field Field) *float64 {
	if price == nil {
		return nil
	}

	switch field {
	case Open:
		return finite(price.Open)
	case High:
		return finite(price.High)
	case Low:
		return finite(price.Low)
	case Close:
		return finite(price.Close)
	}

	return nil
}

func finite(val float64) *float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}

	return &val
}
