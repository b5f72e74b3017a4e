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

package figi

import (
	"context"
	"strings"

	"github.com/alphadose/haxmap"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/rs/zerolog"
)

var (
	figiMap *haxmap.Map[string, string]
)

func init() {
	figiMap = haxmap.New[string, string]()
}

// MapInstance returns the process wide ticker to composite FIGI cache
func MapInstance() *haxmap.Map[string, string] {
	return figiMap
}

// LoadCacheFromDB adds the composite FIGI of every company already stored
// in the database to cache
func LoadCacheFromDB(ctx context.Context, pool *pgxpool.Pool, cache *haxmap.Map[string, string]) error {
	logger := zerolog.Ctx(ctx)

	sql := `SELECT ticker, composite_figi FROM companies WHERE composite_figi IS NOT NULL AND composite_figi <> ''`

	companies := make([]*data.Company, 0)
	if err := pgxscan.Select(ctx, pool, &companies, sql); err != nil {
		logger.Error().Err(err).Str("SQL", sql).Msg("could not load figi cache from database")
		return err
	}

	for _, company := range companies {
		cache.Set(strings.ToUpper(company.Ticker), company.CompositeFigi)
	}

	logger.Debug().Int("NumCompanies", len(companies)).Msg("loaded figi cache from database")

	return nil
}
