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

// Package metrics derives growth, margin, cash, leverage and valuation
// ratios from aligned statement bundles and formats them for display.
//
// Every calculation tolerates missing input: a nil operand or a zero
// denominator yields a nil value formatted as "N/A". Non-finite results
// are treated the same way and never reach the caller.
package metrics

import (
	"fmt"
	"math"
	"strings"
)

const NotAvailable = "N/A"

const (
	UnitPercent     = "%"
	UnitRatio       = "x"
	UnitBasisPoints = "bps"
	UnitShares      = "shares"
)

// MetricValue is a single computed figure and its display form
type MetricValue struct {
	Period          string   `json:"period,omitempty"`
	Value           *float64 `json:"value"`
	Formatted       string   `json:"formatted"`
	Unit            string   `json:"unit"`
	HeatMapQuartile *int     `json:"heat_map_quartile"`
}

// Available reports whether the value could be computed
func (mv MetricValue) Available() bool {
	return mv.Value != nil
}

func newValue(val *float64, unit string, format func(float64) string) MetricValue {
	val = finite(val)
	if val == nil {
		return MetricValue{Formatted: NotAvailable, Unit: unit}
	}

	out := *val
	return MetricValue{Value: &out, Formatted: format(out), Unit: unit}
}

// Currency formats an amount with a currency symbol and magnitude suffix,
// e.g. $1.50B
func Currency(val *float64, symbol string) MetricValue {
	return newValue(val, symbol, func(v float64) string {
		return FormatCurrency(v, symbol)
	})
}

// Percent formats a percentage with two decimals, e.g. 40.00%
func Percent(val *float64) MetricValue {
	return newValue(val, UnitPercent, func(v float64) string {
		return number(v, 2) + "%"
	})
}

// Ratio formats a multiple with two decimals, e.g. 30.00x
func Ratio(val *float64) MetricValue {
	return newValue(val, UnitRatio, func(v float64) string {
		return number(v, 2) + "x"
	})
}

// BasisPoints formats a delta in whole basis points, e.g. 125 bps
func BasisPoints(val *float64) MetricValue {
	return newValue(val, UnitBasisPoints, func(v float64) string {
		return number(v, 0) + " bps"
	})
}

// Shares formats a share count in millions, e.g. 15.44M
func Shares(val *float64) MetricValue {
	return newValue(val, UnitShares, func(v float64) string {
		return number(v/1_000_000, 2) + "M"
	})
}

// number formats val with prec decimals; values that round to zero never
// carry a minus sign
func number(val float64, prec int) string {
	out := fmt.Sprintf("%.*f", prec, val)
	if strings.Trim(out, "-0.") == "" {
		out = strings.TrimPrefix(out, "-")
	}

	return out
}

func finite(val *float64) *float64 {
	if val == nil || math.IsNaN(*val) || math.IsInf(*val, 0) {
		return nil
	}

	return val
}

func ptr(val float64) *float64 {
	return finite(&val)
}
