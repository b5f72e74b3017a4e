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

package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/report"
)

// heat map colors from worst (1) to best (4)
var quartileColors = map[int]lipgloss.Color{
	1: lipgloss.Color("#F8696B"),
	2: lipgloss.Color("#FCBF7B"),
	3: lipgloss.Color("#CCE5A8"),
	4: lipgloss.Color("#63BE7B"),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	naStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
}

// cell renders a formatted value, colored by quartile when heat is set.
// inverted rows color their lowest quartile as the best.
func cell(val metrics.MetricValue, heat bool, inverted bool) string {
	if !val.Available() {
		return naStyle.Render(val.Formatted)
	}

	if score := metrics.Favorability(val.HeatMapQuartile, inverted); heat && score != nil {
		if color, ok := quartileColors[*score]; ok {
			return lipgloss.NewStyle().Foreground(color).Render(val.Formatted)
		}
	}

	return val.Formatted
}

// renderReport draws one table per section
func renderReport(rpt *report.Report, heat bool) string {
	builder := strings.Builder{}

	builder.WriteString(titleStyle.Render(rpt.Ticker))
	if rpt.MarketCap != nil {
		builder.WriteString("  market cap " + rpt.MarketCapFormatted)
	}
	builder.WriteString("\n")

	for _, section := range metrics.Sections {
		rows := rpt.Section(section)
		if len(rows) == 0 {
			continue
		}

		tbl := newTable(append([]string{report.SectionTitle(section)}, rpt.Periods...)...)
		for _, row := range rows {
			cells := make([]string, 0, len(row.Values)+1)
			cells = append(cells, row.DisplayName)
			for _, val := range row.Values {
				cells = append(cells, cell(val, heat && row.HeatMapEnabled, row.HeatMapInverted))
			}
			tbl.Row(cells...)
		}

		builder.WriteString(tbl.Render())
		builder.WriteString("\n")
	}

	return builder.String()
}

// crossSectionColumns are the metrics shown by recalc
var crossSectionColumns = []string{
	metrics.RevenueRow,
	metrics.RevenueGrowthYoYRow,
	metrics.GrossMarginRow,
	metrics.OperatingMarginRow,
	metrics.NetMarginRow,
	metrics.FCFMarginRow,
	metrics.LeverageRatioRow,
	metrics.PERatioRow,
}

// renderCrossSection draws one line per company with the latest value of
// the headline metrics ranked across companies
func renderCrossSection(cross *report.CrossSection, periods map[string]string, heat bool) string {
	headers := []string{"Ticker", "Period", "Mkt Cap"}
	for _, metric := range crossSectionColumns {
		headers = append(headers, displayName(metric))
	}

	tbl := newTable(headers...)
	for _, ticker := range cross.Tickers {
		cells := []string{ticker, periods[ticker], cross.MarketCaps[ticker]}
		for _, metric := range crossSectionColumns {
			cells = append(cells, cell(cross.Value(metric, ticker), heat, cross.Inverted[metric]))
		}
		tbl.Row(cells...)
	}

	return tbl.Render()
}

var displayNames = map[string]string{
	metrics.RevenueRow:          "Revenue",
	metrics.RevenueGrowthYoYRow: "YoY",
	metrics.GrossMarginRow:      "Gross",
	metrics.OperatingMarginRow:  "Operating",
	metrics.NetMarginRow:        "Net",
	metrics.FCFMarginRow:        "FCF",
	metrics.LeverageRatioRow:    "Leverage",
	metrics.PERatioRow:          "P/E",
}

func displayName(metric string) string {
	if name, ok := displayNames[metric]; ok {
		return name
	}
	return metric
}
