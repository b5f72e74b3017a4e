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
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvmetrics/db"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/healthcheck"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type apiKeyConfig struct {
	APIKey string `toml:"apikey,omitempty"`
}

type alphaVantageConfig struct {
	APIKey    string `toml:"apikey,omitempty"`
	RateLimit int    `toml:"rate_limit"`
}

type healthchecksConfig struct {
	APIKey  string `toml:"apikey,omitempty"`
	PingKey string `toml:"ping_key,omitempty"`
}

type metricsConfig struct {
	PeriodType  string `toml:"period_type"`
	PeriodCount int    `toml:"period_count"`
}

// fileConfig is the layout of $HOME/.pvmetrics.toml
type fileConfig struct {
	DB           *library.Library   `toml:"db"`
	Metrics      metricsConfig      `toml:"metrics"`
	AlphaVantage alphaVantageConfig `toml:"alphavantage"`
	Tiingo       apiKeyConfig       `toml:"tiingo"`
	Nasdaq       apiKeyConfig       `toml:"nasdaq"`
	OpenFigi     apiKeyConfig       `toml:"openfigi"`
	Healthchecks healthchecksConfig `toml:"healthchecks"`
	CSV          struct {
		Dir string `toml:"dir,omitempty"`
	} `toml:"csv"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database and provider configuration and setup schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		myLibrary := &library.Library{}
		conf := fileConfig{
			DB: myLibrary,
			Metrics: metricsConfig{
				PeriodType: string(report.DefaultPeriodType),
			},
			AlphaVantage: alphaVantageConfig{RateLimit: 5},
		}

		periodCount := strconv.Itoa(report.DefaultPeriodCount)
		rateLimit := strconv.Itoa(conf.AlphaVantage.RateLimit)

		positiveInt := func(val string) error {
			num, err := strconv.Atoi(val)
			if err != nil {
				return err
			}

			if num < 1 {
				return fmt.Errorf("must be at least 1, got %d", num)
			}

			return nil
		}

		form := huh.NewForm(
			// Gather details about the library and who owns it
			huh.NewGroup(
				huh.NewInput().
					Title("Give the library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),

			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&myLibrary.DBUrl).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),

			// Default reporting window
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Which reporting period should metrics use by default?").
					Options(
						huh.NewOption("Quarterly", string(fiscal.Quarterly)),
						huh.NewOption("Annual", string(fiscal.Annual)),
					).
					Value(&conf.Metrics.PeriodType),

				huh.NewInput().
					Title("How many periods should be shown?").
					Value(&periodCount).
					Validate(positiveInt),
			),

			// Data providers
			huh.NewGroup(
				huh.NewInput().
					Title("Enter your Alpha Vantage API key (leave blank to skip):").
					Value(&conf.AlphaVantage.APIKey),

				huh.NewInput().
					Title("What is the maximum number of Alpha Vantage requests per minute?").
					Value(&rateLimit).
					Validate(positiveInt),

				huh.NewInput().
					Title("Enter your Nasdaq Data Link API key (leave blank to skip):").
					Value(&conf.Nasdaq.APIKey),

				huh.NewInput().
					Title("Enter your Tiingo API key (leave blank to skip):").
					Value(&conf.Tiingo.APIKey),

				huh.NewInput().
					Title("Enter your OpenFIGI API key (leave blank to skip):").
					Value(&conf.OpenFigi.APIKey),
			),

			// Monitoring
			huh.NewGroup(
				huh.NewInput().
					Title("Enter your healthchecks.io API key (leave blank to skip):").
					Value(&conf.Healthchecks.APIKey),

				huh.NewInput().
					Title("Enter your healthchecks.io ping key (leave blank to skip):").
					Value(&conf.Healthchecks.PingKey),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		// validated by the form
		conf.Metrics.PeriodCount, _ = strconv.Atoi(periodCount)
		conf.AlphaVantage.RateLimit, _ = strconv.Atoi(rateLimit)

		log.Info().Msg("creating database tables")

		err = db.Migrate(myLibrary.DBUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")
		log.Info().Msg("Saving library name and owner to database")

		// save library name and owner to database
		if err := myLibrary.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myLibrary.Close()

		err = myLibrary.SaveDB(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("error saving library settings to database")
		}

		if conf.Healthchecks.APIKey != "" {
			checkID, err := healthcheck.New(conf.Healthchecks.APIKey, conf.Healthchecks.PingKey).
				Create(ctx, recalcCheckName, []string{"pvmetrics"}, "0 6 * * 1-5")
			if err != nil {
				log.Error().Err(err).Msg("creating healthcheck failed")
			} else {
				log.Info().Str("CheckID", checkID).Str("Slug", healthcheck.Slug(recalcCheckName)).Msg("created healthcheck for recalc")
			}
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".pvmetrics.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving configuration to config file")
		configData, err := toml.Marshal(conf)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		// the file holds API keys
		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your metrics library has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
