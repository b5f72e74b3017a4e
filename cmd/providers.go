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
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvmetrics/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers <name>",
	Short: "List all providers available or get details about a specific provider",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}

		if len(args) > 0 {
			dataProvider, err := provider.New(args[0])
			if err != nil {
				log.Fatal().Err(err).Str("Provider", args[0]).Msg("unknown provider")
			}

			builder.WriteString(fmt.Sprintf("# %s\n", dataProvider.Name()))
			builder.WriteString(dataProvider.Description())
			builder.WriteString("\n\n## Configuration\n")

			config := dataProvider.ConfigDescription()
			keys := make([]string, 0, len(config))
			for key := range config {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				status := "not set"
				if viper.IsSet(key) {
					status = "set"
				}
				builder.WriteString(fmt.Sprintf("- `%s` (%s): %s\n", key, status, config[key]))
			}
		} else {
			builder.WriteString("# Available Providers\n")
			for _, name := range provider.Names() {
				dataProvider, _ := provider.New(name)
				builder.WriteString(fmt.Sprintf("\n## %s\n", dataProvider.Name()))
				builder.WriteString(dataProvider.Description())
				builder.WriteString("\n")
			}
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render provider document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
