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
	"os"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvmetrics/figi"
	"github.com/penny-vault/pvmetrics/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	importProvider string
	importPrices   string
	skipFigi       bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <ticker...>",
	Short: "Import financial statements and prices for one or more companies",
	Long: `Download the company details, income statements, balance sheets, cash
flow statements, and daily prices of each ticker from a data provider and
save them to the library. Records that already exist are updated.

Prices can be taken from a second provider with --prices, e.g. statements
from sharadar and prices from tiingo.

Also see: providers`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		statementProvider, err := provider.New(importProvider)
		if err != nil {
			fmt.Printf("Data Provider '%s' doesn't exist.\n", importProvider)
			fmt.Printf("Run `pvmetrics providers` for a complete list of available providers\n")
			os.Exit(1)
		}

		var priceProvider provider.Provider
		if importPrices != "" {
			if priceProvider, err = provider.New(importPrices); err != nil {
				log.Fatal().Err(err).Str("Provider", importPrices).Msg("price provider not found")
			}
		}

		myLibrary := openLibrary(ctx)
		defer myLibrary.Close()

		var enricher *figi.Enricher
		if !skipFigi {
			enricher = figi.NewEnricher(viper.GetString("openfigi.apikey"))
			if err := figi.LoadCacheFromDB(ctx, myLibrary.Pool, figi.MapInstance()); err != nil {
				log.Warn().Err(err).Msg("figi cache is empty")
			}
		}

		failed := 0
		for _, ticker := range args {
			ticker = strings.ToUpper(ticker)
			tickerLogger := log.With().Str("Ticker", ticker).Str("Provider", statementProvider.Name()).Logger()
			tickerCtx := tickerLogger.WithContext(ctx)
			startTime := time.Now()

			set, err := statementProvider.Fetch(tickerCtx, ticker)
			if err != nil {
				tickerLogger.Error().Err(err).Msg("fetch returned an error")
				failed++
				continue
			}

			if priceProvider != nil {
				prices, err := priceProvider.Fetch(tickerCtx, ticker)
				if err != nil {
					tickerLogger.Error().Err(err).Str("PriceProvider", priceProvider.Name()).Msg("could not fetch prices")
					failed++
					continue
				}

				provider.Merge(set, prices)
			}

			if enricher != nil {
				if err := enricher.Enrich(tickerCtx, set.Company); err != nil {
					tickerLogger.Warn().Err(err).Msg("could not look up composite figi")
				}
			}

			if err := myLibrary.SaveStatements(tickerCtx, set); err != nil {
				tickerLogger.Error().Err(err).Msg("could not save statements")
				failed++
				continue
			}

			tickerLogger.Info().
				Object("Set", set).
				Str("RunTime", durafmt.Parse(time.Since(startTime)).LimitFirstN(2).String()).
				Msg("imported statements")
		}

		if failed > 0 {
			log.Error().Int("NumFailed", failed).Int("NumTickers", len(args)).Msg("some tickers could not be imported")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importProvider, "provider", "p", "alphavantage", "provider to fetch statements from")
	importCmd.Flags().StringVar(&importPrices, "prices", "", "provider to fetch daily prices from (default: the statement provider)")
	importCmd.Flags().BoolVar(&skipFigi, "skip-figi", false, "do not look up composite FIGIs")
}
