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

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/penny-vault/pvmetrics/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	deps        bool
	short       bool
	versionJSON bool
)

// engineInfo describes the metric engine this binary was built with and the
// window it is configured to compute
type engineInfo struct {
	Version     string   `json:"version"`
	Config      string   `json:"config"`
	PeriodType  string   `json:"period_type"`
	PeriodCount int      `json:"period_count"`
	FetchLimit  int      `json:"fetch_limit"`
	NumMetrics  int      `json:"num_metrics"`
	NumSections int      `json:"num_sections"`
	Providers   []string `json:"providers"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info and the configured metric window",
	Long: `Print the pvmetrics version, build date, and commit followed by the
fiscal window the metrics command computes (period type, number of periods
and how many statements are loaded per company), the size of the metric
catalogue, and the statement providers compiled in. With --deps the version
of every linked module is listed as well.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if short {
			fmt.Println(pkginfo.Version)
			return
		}

		opts := reportOptions()
		info := engineInfo{
			Version:     pkginfo.Version,
			Config:      viper.ConfigFileUsed(),
			PeriodType:  string(opts.PeriodType),
			PeriodCount: opts.PeriodCount,
			FetchLimit:  opts.FetchLimit(),
			NumMetrics:  len(metrics.NewCalculator("").Rows(nil)),
			NumSections: len(metrics.Sections),
			Providers:   provider.Names(),
		}

		if versionJSON {
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not marshal version info")
			}
			fmt.Println(string(out))
			return
		}

		if info.Config == "" {
			info.Config = "none"
		}

		fmt.Println(pkginfo.BuildVersionString())
		fmt.Println()
		fmt.Printf("Config: %s\n", info.Config)
		fmt.Printf("Window: %d %s periods, %d statements loaded per kind\n", info.PeriodCount, info.PeriodType, info.FetchLimit)
		fmt.Printf("Metrics: %d in %d sections\n", info.NumMetrics, info.NumSections)
		fmt.Printf("Providers: %s\n", strings.Join(info.Providers, ", "))

		if deps {
			fmt.Printf("\n\n")
			fmt.Println(strings.Join(pkginfo.GetDependencyList(), "\n"))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&deps, "deps", "d", false, "print dependencies")
	versionCmd.Flags().BoolVarP(&short, "short", "s", false, "only print version number")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version and engine info as JSON")
}
