// Copyright 2023
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
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// infoMetrics are the headline figures listed per company
var infoMetrics = []string{
	metrics.RevenueRow,
	metrics.RevenueGrowthYoYRow,
	metrics.NetMarginRow,
	metrics.FCFMarginRow,
	metrics.PERatioRow,
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [ticker...]",
	Short: "Summarize the companies and filings stored in the metrics library",
	Long: `Summarize the metrics library: the number of companies tracked, how
many statements and prices are stored, and when each company last received
new filings.

For every ticker given the company's fiscal calendar, latest reporting period,
market cap, and headline metrics are listed as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		myLibrary := openLibrary(ctx)
		defer myLibrary.Close()

		summary, err := myLibrary.Summary(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create library summary document")
		}

		builder := strings.Builder{}
		builder.WriteString(summary)

		opts := reportOptions()
		for _, ticker := range args {
			section, err := companyInfo(myLibrary, ticker, opts)
			if err != nil {
				log.Error().Err(err).Str("Ticker", ticker).Msg("could not summarize company")
				continue
			}
			builder.WriteString(section)
		}

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}

		fmt.Print(out)
	},
}

// companyInfo describes a single company's latest figures in markdown
func companyInfo(myLibrary *library.Library, ticker string, opts report.Options) (string, error) {
	ctx := commandContext()

	company, err := myLibrary.CompanyByTicker(ctx, ticker)
	if err != nil {
		return "", err
	}

	cal, err := company.Calendar()
	if err != nil {
		return "", err
	}

	statements, err := myLibrary.Statements(ctx, company.ID, opts.PeriodType, opts.FetchLimit(), opts.AsOfDate())
	if err != nil {
		return "", err
	}

	rpt, err := report.Build(company, statements, opts)
	if err != nil {
		return "", err
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("\n## %s %s\n\n", company.Ticker, company.Name))
	builder.WriteString(fmt.Sprintf("  * Fiscal Year Ends: %s\n", cal.YearEndMonth()))
	builder.WriteString(fmt.Sprintf("  * Currency: %s\n", company.CurrencyCode()))
	builder.WriteString(fmt.Sprintf("  * Market Cap: %s\n", rpt.MarketCapFormatted))

	if len(rpt.Periods) > 0 {
		builder.WriteString(fmt.Sprintf("  * Latest Period: %s (ended %s)\n", rpt.Periods[0], rpt.PeriodEndDates[0].Format("2006-01-02")))
	}

	for _, metric := range infoMetrics {
		row := rpt.Row(metric)
		if row == nil {
			continue
		}
		builder.WriteString(fmt.Sprintf("  * %s: %s\n", row.DisplayName, rpt.Latest(metric).Formatted))
	}

	return builder.String(), nil
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
