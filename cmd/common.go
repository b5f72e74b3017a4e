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
	"context"
	"time"

	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/library"
	"github.com/penny-vault/pvmetrics/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const recalcCheckName = "pvmetrics recalc"

// commandContext returns a context carrying the global logger so that
// zerolog.Ctx works in providers
func commandContext() context.Context {
	return log.Logger.WithContext(context.Background())
}

func openLibrary(ctx context.Context) *library.Library {
	myLibrary, err := library.NewFromDB(ctx, viper.GetString("db.url"))
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to library")
	}

	return myLibrary
}

// reportOptions builds report options from the metrics.* configuration
// and the --as-of flag
func reportOptions() report.Options {
	opts := report.DefaultOptions()

	periodType, err := fiscal.ParsePeriodType(viper.GetString("metrics.period_type"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid metrics.period_type")
	}
	opts.PeriodType = periodType

	opts.PeriodCount = viper.GetInt("metrics.period_count")
	if opts.PeriodCount < 1 {
		log.Fatal().Int("PeriodCount", opts.PeriodCount).Msg("metrics.period_count must be at least 1")
	}

	if asOf != "" {
		opts.AsOf, err = time.Parse("2006-01-02", asOf)
		if err != nil {
			log.Fatal().Err(err).Str("AsOf", asOf).Msg("could not parse --as-of, expected YYYY-MM-DD")
		}
	}

	return opts
}

// loadStatements reads statements for the batch runner from the library
func loadStatements(myLibrary *library.Library) report.LoadFunc {
	return func(ctx context.Context, company *data.Company, periodType fiscal.PeriodType, limit int, asOf time.Time) (align.Statements, error) {
		return myLibrary.Statements(ctx, company.ID, periodType, limit, asOf)
	}
}
