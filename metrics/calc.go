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

import "math"

// Growth returns the percentage change from prior to current, measured
// against the magnitude of prior so that a move from a loss toward profit
// is positive.
func Growth(current, prior *float64) *float64 {
	if current == nil || prior == nil || *prior == 0 {
		return nil
	}

	return ptr((*current - *prior) / math.Abs(*prior) * 100)
}

// Margin returns numerator as a percentage of denominator
func Margin(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}

	return ptr(*numerator / *denominator * 100)
}

// Deltas converts a series of percentages into period-over-period changes
// in basis points. The first element, and any element next to a missing
// value, is nil.
func Deltas(series []*float64) []*float64 {
	out := make([]*float64, len(series))
	for idx := 1; idx < len(series); idx++ {
		cur, prev := finite(series[idx]), finite(series[idx-1])
		if cur == nil || prev == nil {
			continue
		}

		out[idx] = ptr((*cur - *prev) * 100)
	}

	return out
}

// PE returns the price to earnings multiple. Non-positive earnings have no
// meaningful multiple and return nil.
func PE(price, eps *float64) *float64 {
	if price == nil || eps == nil || *eps <= 0 {
		return nil
	}

	return ptr(*price / *eps)
}

// Leverage returns (revenue - net debt) as a percentage of revenue
func Leverage(revenue, netDebt *float64) *float64 {
	if revenue == nil || netDebt == nil || *revenue == 0 {
		return nil
	}

	return ptr((*revenue - *netDebt) / *revenue * 100)
}

// MarketCap is shares outstanding times the share price
func MarketCap(shares, price *float64) *float64 {
	if shares == nil || price == nil {
		return nil
	}

	return finite(ptr(*shares * *price))
}
