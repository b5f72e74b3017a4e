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

package report

import (
	"github.com/penny-vault/pvmetrics/metrics"
)

// CrossSection holds the most recent value of every metric for a group of
// companies, ranked against each other rather than against their own
// history
type CrossSection struct {
	Tickers []string `json:"tickers"`
	Metrics []string `json:"metrics"`

	// Values maps a metric name to one value per ticker, in ticker order
	Values map[string][]metrics.MetricValue `json:"values"`

	// Inverted holds the metrics where a lower value ranks better
	Inverted map[string]bool `json:"inverted"`

	// MarketCaps is the formatted market cap of each ticker
	MarketCaps map[string]string `json:"market_caps"`
}

// RankLatest ranks the latest period of each report across reports. Metric
// order follows the first report; nil reports are skipped.
func RankLatest(reports []*Report) *CrossSection {
	cross := &CrossSection{
		Tickers:    make([]string, 0, len(reports)),
		Metrics:    make([]string, 0),
		Values:     make(map[string][]metrics.MetricValue),
		Inverted:   make(map[string]bool),
		MarketCaps: make(map[string]string),
	}

	valid := make([]*Report, 0, len(reports))
	for _, rpt := range reports {
		if rpt != nil {
			valid = append(valid, rpt)
			cross.Tickers = append(cross.Tickers, rpt.Ticker)
			cross.MarketCaps[rpt.Ticker] = rpt.MarketCapFormatted
		}
	}

	if len(valid) == 0 {
		return cross
	}

	for _, row := range valid[0].Rows() {
		cross.Metrics = append(cross.Metrics, row.Name)
		if row.HeatMapInverted {
			cross.Inverted[row.Name] = true
		}

		values := make([]metrics.MetricValue, len(valid))
		raw := make([]*float64, len(valid))
		for idx, rpt := range valid {
			values[idx] = rpt.Latest(row.Name)
			values[idx].HeatMapQuartile = nil
			raw[idx] = values[idx].Value
		}

		if row.HeatMapEnabled {
			for idx, quartile := range metrics.Quartiles(raw) {
				values[idx].HeatMapQuartile = quartile
			}
		}

		cross.Values[row.Name] = values
	}

	return cross
}

// Value returns the latest value of metric for ticker
func (cross *CrossSection) Value(metric, ticker string) metrics.MetricValue {
	for idx, candidate := range cross.Tickers {
		if candidate == ticker && idx < len(cross.Values[metric]) {
			return cross.Values[metric][idx]
		}
	}

	return metrics.MetricValue{Formatted: metrics.NotAvailable}
}
