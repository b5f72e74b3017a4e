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
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/figi"
	"github.com/penny-vault/pvmetrics/healthcheck"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	recalcWorkers int
	recalcJSON    bool
)

// recalcCmd represents the recalc command
var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute metrics for every active company and rank them against each other",
	Long: `Recompute the metric table of every active company in the library
using a pool of workers. The latest value of each metric is ranked into
quartiles across companies.

When healthchecks.ping_key is configured the run is reported to the
"pvmetrics recalc" check on healthchecks.io.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		myLibrary := openLibrary(ctx)
		defer myLibrary.Close()

		monitor := healthcheck.NewFromConfig()
		if monitor.Enabled() {
			if err := monitor.Start(ctx, recalcCheckName); err != nil {
				log.Warn().Err(err).Msg("could not signal start to healthchecks")
			}
		}

		companies, err := myLibrary.Companies(ctx, true)
		if err != nil {
			failRecalc(monitor, err, "could not load companies")
		}

		enrichCompanies(myLibrary, companies)

		opts := reportOptions()
		startTime := time.Now()

		results, summary := report.Batch(ctx, companies, recalcWorkers, loadStatements(myLibrary), opts)

		reports := make([]*report.Report, 0, summary.Succeeded)
		periods := make(map[string]string, summary.Succeeded)
		for _, result := range results {
			if result.Err != nil {
				log.Error().Err(result.Err).Str("Ticker", result.Company.Ticker).Msg("could not compute metrics")
				continue
			}

			reports = append(reports, result.Report)
			if len(result.Report.Periods) > 0 {
				periods[result.Report.Ticker] = result.Report.Periods[0]
			}
		}

		cross := report.RankLatest(reports)

		status := fmt.Sprintf("%d succeeded, %d failed in %s", summary.Succeeded, summary.Failed,
			durafmt.Parse(time.Since(startTime)).LimitFirstN(2).String())

		log.Info().Int("NumSucceeded", summary.Succeeded).Int("NumFailed", summary.Failed).
			Int("NumWorkers", recalcWorkers).Msg("recalculated metrics")

		if recalcJSON {
			out, err := json.MarshalIndent(cross, "", "  ")
			if err != nil {
				failRecalc(monitor, err, "could not marshal results")
			}
			fmt.Println(string(out))
		} else if len(reports) > 0 {
			fmt.Println(renderCrossSection(cross, periods, true))
		}

		if !monitor.Enabled() {
			return
		}

		if summary.Failed > 0 {
			err = monitor.Fail(ctx, recalcCheckName, status)
		} else {
			err = monitor.Success(ctx, recalcCheckName, status)
		}

		if err != nil {
			log.Warn().Err(err).Msg("could not report status to healthchecks")
		}
	},
}

// enrichCompanies fills in and stores composite FIGIs that are missing
func enrichCompanies(myLibrary *library.Library, companies []*data.Company) {
	ctx := commandContext()

	missing := make([]*data.Company, 0)
	for _, company := range companies {
		if company.CompositeFigi == "" {
			missing = append(missing, company)
		}
	}

	if len(missing) == 0 {
		return
	}

	enricher := figi.NewEnricher(viper.GetString("openfigi.apikey"))
	if err := enricher.Enrich(ctx, missing...); err != nil {
		log.Warn().Err(err).Msg("could not look up composite figis")
		return
	}

	for _, company := range missing {
		if company.CompositeFigi == "" {
			continue
		}

		if err := myLibrary.SetCompositeFigi(ctx, company.ID, company.CompositeFigi); err != nil {
			log.Warn().Err(err).Str("Ticker", company.Ticker).Msg("could not save composite figi")
		}
	}
}

func failRecalc(monitor *healthcheck.Client, err error, msg string) {
	if monitor.Enabled() {
		if pingErr := monitor.Fail(commandContext(), recalcCheckName, fmt.Sprintf("%s: %s", msg, err)); pingErr != nil {
			log.Warn().Err(pingErr).Msg("could not report failure to healthchecks")
		}
	}

	log.Fatal().Err(err).Msg(msg)
}

func init() {
	rootCmd.AddCommand(recalcCmd)

	recalcCmd.Flags().IntVarP(&recalcWorkers, "workers", "w", 4, "number of companies to compute concurrently")
	recalcCmd.Flags().BoolVar(&recalcJSON, "json", false, "print the ranked latest values as JSON")
}
