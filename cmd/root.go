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
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	asOf    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvmetrics",
	Short: "pvmetrics computes fiscal-period aligned financial metrics for a library of companies",
	Long: `pvmetrics is a command line utility for importing company financial
statements and turning them into a table of growth, margin, cash flow,
leverage, and valuation metrics aligned to each company's own fiscal
calendar.

Statements can be imported from:

	* [Alpha Vantage](https://www.alphavantage.co)
	* [Nasdaq Data Link](https://data.nasdaq.com) (Sharadar SF1)
	* [Tiingo](https://www.tiingo.com) (prices)
	* local CSV exports

Companies whose fiscal year does not end in December are handled by
generating the reporting window from the company's fiscal-year-end month,
so "Q3 2024" always means the third quarter of the company's fiscal 2024.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(viper.GetString("log.level"))
		if err != nil {
			log.Warn().Err(err).Str("Level", viper.GetString("log.level")).Msg("invalid log level, using info")
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	viper.SetDefault("log.level", "info")
	viper.SetDefault("metrics.period_type", "quarterly")
	viper.SetDefault("metrics.period_count", 8)
	viper.SetDefault("alphavantage.rate_limit", 5)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvmetrics.toml)")

	rootCmd.PersistentFlags().String("db-url", "", "database connection string")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db-url failed")
	}

	rootCmd.PersistentFlags().String("period-type", "quarterly", "reporting period type (quarterly or annual)")
	if err := viper.BindPFlag("metrics.period_type", rootCmd.PersistentFlags().Lookup("period-type")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for period-type failed")
	}

	rootCmd.PersistentFlags().Int("periods", 8, "number of reporting periods")
	if err := viper.BindPFlag("metrics.period_count", rootCmd.PersistentFlags().Lookup("periods")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for periods failed")
	}

	rootCmd.PersistentFlags().StringVar(&asOf, "as-of", "", "anchor the reporting window at this date (YYYY-MM-DD, default today)")

	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-level failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvmetrics" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvmetrics")
	}

	// db.url is read from DB_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
