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
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/goccy/go-json"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	metricsJSON     bool
	metricsMarkdown bool
	metricsCSV      bool
	noHeatMap       bool
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics <ticker>",
	Short: "Compute the metric table for a company",
	Long: `Compute growth, margin, cash flow, leverage, and valuation metrics
for the most recent reporting periods of a company. Periods are generated
from the company's fiscal-year-end month and shown newest first.

Values are colored by quartile across the periods shown unless --no-heatmap
is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		myLibrary := openLibrary(ctx)
		defer myLibrary.Close()

		company, err := myLibrary.CompanyByTicker(ctx, args[0])
		if errors.Is(err, library.ErrCompanyNotFound) {
			fmt.Printf("Company '%s' is not in the library.\n", args[0])
			fmt.Println("Run `pvmetrics import` to add it")
			os.Exit(1)
		}

		if err != nil {
			log.Fatal().Err(err).Str("Ticker", args[0]).Msg("could not load company")
		}

		opts := reportOptions()
		opts.HeatMap = !noHeatMap

		statements, err := myLibrary.Statements(ctx, company.ID, opts.PeriodType, opts.FetchLimit(), opts.AsOfDate())
		if err != nil {
			log.Fatal().Err(err).Str("Ticker", company.Ticker).Msg("could not load statements")
		}

		rpt, err := report.Build(company, statements, opts)
		if err != nil {
			log.Fatal().Err(err).Str("Ticker", company.Ticker).Msg("could not compute metrics")
		}

		log.Debug().Object("Report", rpt).Msg("computed metrics")

		switch {
		case metricsJSON:
			out, err := json.MarshalIndent(rpt, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not marshal report")
			}
			fmt.Println(string(out))
		case metricsCSV:
			if err := rpt.WriteCSV(os.Stdout); err != nil {
				log.Fatal().Err(err).Msg("could not write csv")
			}
		case metricsMarkdown:
			r, _ := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(160),
			)

			out, err := r.Render(rpt.Markdown())
			if err != nil {
				log.Fatal().Err(err).Msg("could not render metrics document")
			}
			fmt.Print(out)
		default:
			fmt.Print(renderReport(rpt, opts.HeatMap))
		}
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print the report as JSON")
	metricsCmd.Flags().BoolVar(&metricsMarkdown, "markdown", false, "render the report as markdown")
	metricsCmd.Flags().BoolVar(&metricsCSV, "csv", false, "print one CSV record per metric and period")
	metricsCmd.Flags().BoolVar(&noHeatMap, "no-heatmap", false, "do not color values by quartile")
	metricsCmd.MarkFlagsMutuallyExclusive("json", "markdown", "csv")
}
