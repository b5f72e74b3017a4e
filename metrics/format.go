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
	"fmt"
	"math"
	"strings"
)

type magnitude struct {
	threshold float64
	suffix    string
}

var magnitudes = []magnitude{
	{1_000_000_000_000, "T"},
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// FormatCurrency scales value to the largest magnitude its absolute value
// reaches and prints it with two decimals: 1_500_000_000 -> "$1.50B",
// 950_000 -> "$950.00K", 12.5 -> "$12.50".
func FormatCurrency(value float64, symbol string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotAvailable
	}

	abs := math.Abs(value)
	for _, mag := range magnitudes {
		if abs >= mag.threshold {
			return symbol + number(value/mag.threshold, 2) + mag.suffix
		}
	}

	return symbol + number(value, 2)
}

// CurrencySymbol maps an ISO currency code to its display symbol. Unknown
// codes are returned as-is and an empty code is treated as USD.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", "USD":
		return "$"
	case "INR":
		return "₹"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(strings.TrimSpace(code))
	}
}

// FormatMarketCap prints a market capitalization with one decimal and a
// magnitude suffix, e.g. "$2.9T". Values below one thousand have no
// decimals.
func FormatMarketCap(marketCap *float64, currencyCode string) string {
	if finite(marketCap) == nil {
		return NotAvailable
	}

	symbol := CurrencySymbol(currencyCode)
	val := *marketCap
	for _, mag := range magnitudes {
		if val >= mag.threshold {
			return fmt.Sprintf("%s%.1f%s", symbol, val/mag.threshold, mag.suffix)
		}
	}

	return fmt.Sprintf("%s%.0f", symbol, val)
}
