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
	"fmt"
	"strings"

	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var sectionTitles = map[metrics.Section]string{
	metrics.GrowthAndMargins: "Growth & Margins",
	metrics.CashAndLeverage:  "Cash & Leverage",
	metrics.Valuation:        "Valuation",
}

// SectionTitle returns the display title of a section
func SectionTitle(section metrics.Section) string {
	if title, ok := sectionTitles[section]; ok {
		return title
	}
	return string(section)
}

// Markdown renders the report as a set of markdown tables, one per section
func (rpt *Report) Markdown() string {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n\n", rpt.Ticker))
	builder.WriteString(p.Sprintf("%d %s periods in %s", len(rpt.Periods), rpt.PeriodType, rpt.Currency))

	if rpt.MarketCap != nil {
		builder.WriteString(fmt.Sprintf(", market cap %s", rpt.MarketCapFormatted))
	}

	if len(rpt.PeriodEndDates) > 0 {
		latest := rpt.PeriodEndDates[0]
		builder.WriteString(fmt.Sprintf(", latest ended %s (%s)", latest.Format("Jan 2, 2006"), timeago.English.Format(latest)))
	}

	builder.WriteString("\n\n")

	for _, section := range metrics.Sections {
		rows := rpt.Section(section)
		if len(rows) == 0 {
			continue
		}

		builder.WriteString(fmt.Sprintf("## %s\n\n", SectionTitle(section)))

		builder.WriteString("| Metric |")
		for _, label := range rpt.Periods {
			builder.WriteString(fmt.Sprintf(" %s |", label))
		}
		builder.WriteString("\n|:---|")
		for range rpt.Periods {
			builder.WriteString("---:|")
		}
		builder.WriteString("\n")

		for _, row := range rows {
			builder.WriteString(fmt.Sprintf("| %s |", row.DisplayName))
			for _, val := range row.Values {
				builder.WriteString(fmt.Sprintf(" %s |", val.Formatted))
			}
			builder.WriteString("\n")
		}

		builder.WriteString("\n")
	}

	return builder.String()
}
