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
	"strconv"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var fyeMonth int

// periodsCmd represents the periods command
var periodsCmd = &cobra.Command{
	Use:   "periods [ticker]",
	Short: "Print the reporting periods for a fiscal calendar",
	Long: `Print the labeled reporting periods that metrics are computed for.
When a ticker is given the company's fiscal-year-end month is read from the
library; otherwise --fye selects it.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		company := &data.Company{Ticker: "--fye", FiscalYearEndMonth: &fyeMonth}
		title := fmt.Sprintf("FYE month %d", fyeMonth)

		if len(args) == 1 {
			ctx := commandContext()
			myLibrary := openLibrary(ctx)
			defer myLibrary.Close()

			var err error
			company, err = myLibrary.CompanyByTicker(ctx, args[0])
			if err != nil {
				log.Fatal().Err(err).Str("Ticker", args[0]).Msg("could not load company")
			}

			title = fmt.Sprintf("%s (FYE month %d)", company.Ticker, company.FiscalYearEnd())
		}

		cal, err := company.Calendar()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid fiscal year end")
		}

		opts := reportOptions()
		periods := cal.Periods(opts.PeriodCount, opts.PeriodType, opts.AsOfDate())

		tbl := newTable("Period", "Fiscal Year", "Quarter", "End Date")
		for _, period := range periods {
			quarter := ""
			if period.FiscalQuarter != 0 {
				quarter = strconv.Itoa(period.FiscalQuarter)
			}

			tbl.Row(period.Label, strconv.Itoa(period.FiscalYear), quarter, period.EndDate.Format("2006-01-02"))
			log.Debug().Object("Period", period).Msg("generated period")
		}

		fmt.Println(titleStyle.Render(title))
		fmt.Println(tbl.Render())
	},
}

func init() {
	rootCmd.AddCommand(periodsCmd)

	periodsCmd.Flags().IntVar(&fyeMonth, "fye", data.DefaultFiscalYearEndMonth, "fiscal year end month (1-12)")
}
