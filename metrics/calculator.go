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

package metrics

import (
	"strings"

	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
)

type Section string

const (
	GrowthAndMargins Section = "growth_and_margins"
	CashAndLeverage  Section = "cash_and_leverage"
	Valuation        Section = "valuation"
)

// Sections lists every section in display order
var Sections = []Section{GrowthAndMargins, CashAndLeverage, Valuation}

const (
	RevenueRow                  = "revenue"
	RevenueGrowthYoYRow         = "revenue_growth_yoy"
	RevenueGrowthQoQRow         = "revenue_growth_qoq"
	RevenueAccelerationRow      = "revenue_acceleration"
	GrossMarginRow              = "gross_margin"
	GrossMarginExpansionRow     = "gross_margin_expansion"
	OperatingMarginRow          = "operating_margin"
	OperatingMarginExpansionRow = "operating_margin_expansion"
	NetMarginRow                = "net_margin"
	NetMarginExpansionRow       = "net_margin_expansion"
	OCFMarginRow                = "ocf_margin"
	FCFMarginRow                = "fcf_margin"
	LeverageRatioRow            = "leverage_ratio"
	SharesOutstandingRow        = "shares_outstanding"
	OpenToRevenueRow            = "open_to_revenue"
	HighToRevenueRow            = "high_to_revenue"
	LowToRevenueRow             = "low_to_revenue"
	CloseToRevenueRow           = "close_to_revenue"
	PERatioRow                  = "pe_ratio"
)

// Row is one named metric evaluated across every requested period
type Row struct {
	Name           string        `json:"metric_name"`
	DisplayName    string        `json:"display_name"`
	Section        Section       `json:"-"`
	Values         []MetricValue `json:"values"`
	HeatMapEnabled bool          `json:"heat_map_enabled"`

	// HeatMapInverted is set when a lower value is the better one
	HeatMapInverted bool `json:"heat_map_inverted"`
}

// Floats returns the raw values of the row
func (row *Row) Floats() []*float64 {
	out := make([]*float64, len(row.Values))
	for idx, val := range row.Values {
		out[idx] = val.Value
	}

	return out
}

// Find returns the row called name or nil
func Find(rows []*Row, name string) *Row {
	for _, row := range rows {
		if row.Name == name {
			return row
		}
	}

	return nil
}

// Calculator turns aligned bundles into metric rows
type Calculator struct {
	// Symbol prefixes every currency amount, e.g. "$"
	Symbol string
}

// NewCalculator returns a calculator that formats amounts in the given ISO
// currency
func NewCalculator(currencyCode string) *Calculator {
	return &Calculator{Symbol: CurrencySymbol(currencyCode)}
}

// Rows evaluates the full metric catalogue. Each row carries one value per
// bundle in the same order as bundles.
func (calc *Calculator) Rows(bundles []*align.Bundle) []*Row {
	count := len(bundles)

	revenue := make([]*float64, count)
	yoy := make([]*float64, count)
	qoq := make([]*float64, count)
	grossMargin := make([]*float64, count)
	operatingMargin := make([]*float64, count)
	netMargin := make([]*float64, count)
	ocfMargin := make([]*float64, count)
	fcfMargin := make([]*float64, count)
	leverage := make([]*float64, count)
	shares := make([]*float64, count)
	openRatio := make([]*float64, count)
	highRatio := make([]*float64, count)
	lowRatio := make([]*float64, count)
	closeRatio := make([]*float64, count)
	pe := make([]*float64, count)

	for idx, bundle := range bundles {
		rev := bundle.Revenue()

		revenue[idx] = rev
		yoy[idx] = Growth(rev, bundle.PriorYearRevenue())
		qoq[idx] = Growth(rev, bundle.PriorPeriodRevenue())

		grossMargin[idx] = Margin(bundle.GrossProfit(), rev)
		operatingMargin[idx] = Margin(bundle.OperatingIncome(), rev)
		netMargin[idx] = Margin(bundle.NetIncome(), rev)

		ocfMargin[idx] = Margin(bundle.OperatingCashFlow(), rev)
		fcfMargin[idx] = Margin(bundle.FreeCashFlow(), rev)
		leverage[idx] = Leverage(rev, bundle.NetDebt())
		shares[idx] = bundle.SharesOutstanding()

		openRatio[idx] = Margin(bundle.PriceValue(data.Open), rev)
		highRatio[idx] = Margin(bundle.PriceValue(data.High), rev)
		lowRatio[idx] = Margin(bundle.PriceValue(data.Low), rev)
		closeRatio[idx] = Margin(bundle.PriceValue(data.Close), rev)
		pe[idx] = PE(bundle.PriceValue(data.Close), bundle.EPS())
	}

	currency := func(val *float64) MetricValue {
		return Currency(val, calc.Symbol)
	}

	return []*Row{
		newRow(RevenueRow, "Revenue", GrowthAndMargins, revenue, currency),
		newRow(RevenueGrowthYoYRow, "Revenue Growth (YoY)", GrowthAndMargins, yoy, Percent),
		newRow(RevenueGrowthQoQRow, "Revenue Growth (QoQ)", GrowthAndMargins, qoq, Percent),
		newRow(RevenueAccelerationRow, "Revenue Acceleration", GrowthAndMargins, Deltas(yoy), BasisPoints),
		newRow(GrossMarginRow, "Gross Margin", GrowthAndMargins, grossMargin, Percent),
		newRow(GrossMarginExpansionRow, "Gross Margin Expansion", GrowthAndMargins, Deltas(grossMargin), BasisPoints),
		newRow(OperatingMarginRow, "Operating Margin", GrowthAndMargins, operatingMargin, Percent),
		newRow(OperatingMarginExpansionRow, "Operating Margin Expansion", GrowthAndMargins, Deltas(operatingMargin), BasisPoints),
		newRow(NetMarginRow, "Net Margin", GrowthAndMargins, netMargin, Percent),
		newRow(NetMarginExpansionRow, "Net Margin Expansion", GrowthAndMargins, Deltas(netMargin), BasisPoints),

		newRow(OCFMarginRow, "OCF Margin", CashAndLeverage, ocfMargin, Percent),
		newRow(FCFMarginRow, "FCF Margin", CashAndLeverage, fcfMargin, Percent),
		newRow(LeverageRatioRow, "Leverage Ratio", CashAndLeverage, leverage, Percent),
		newRow(SharesOutstandingRow, "Shares Outstanding", CashAndLeverage, shares, Shares),

		newRow(OpenToRevenueRow, "Open / Revenue", Valuation, openRatio, Percent),
		newRow(HighToRevenueRow, "High / Revenue", Valuation, highRatio, Percent),
		newRow(LowToRevenueRow, "Low / Revenue", Valuation, lowRatio, Percent),
		newRow(CloseToRevenueRow, "Close / Revenue", Valuation, closeRatio, Percent),
		newRow(PERatioRow, "P/E Ratio", Valuation, pe, Ratio),
	}
}

// LowerIsBetter reports whether the heat map of the named metric runs in
// reverse. Ratio and price multiples are cheaper, and so better, when low.
func LowerIsBetter(name string) bool {
	return strings.HasSuffix(name, "_ratio") || strings.HasPrefix(name, "price_to")
}

func newRow(name, display string, section Section, series []*float64, format func(*float64) MetricValue) *Row {
	row := &Row{
		Name:           name,
		DisplayName:    display,
		Section:        section,
		Values:         make([]MetricValue, len(series)),
		HeatMapEnabled: true,
	}

	row.HeatMapInverted = LowerIsBetter(name)

	for idx, val := range series {
		row.Values[idx] = format(val)
	}

	return row
}
