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

package data

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type DailyPrice struct {
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
	Date      time.Time `db:"price_date" json:"date"`
	Open      float64   `db:"open" json:"open"`
	High      float64   `db:"high" json:"high"`
	Low       float64   `db:"low" json:"low"`
	Close     float64   `db:"close" json:"close"`
	Volume    int64     `db:"volume" json:"volume"`
}

func (price *DailyPrice) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CompanyID", price.CompanyID.String())
	e.Time("Date", price.Date)
	e.Float64("Close", price.Close)
}

func (price *DailyPrice) SaveDB(ctx context.Context, tx pgx.Tx) error {
	sql := `INSERT INTO daily_prices (
		"company_id",
		"price_date",
		"open",
		"high",
		"low",
		"close",
		"volume"
	) VALUES (
		$1,
		$2,
		$3,
		$4,
		$5,
		$6,
		$7
	) ON CONFLICT ON CONSTRAINT daily_prices_pkey
	DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume`

	_, err := tx.Exec(ctx, sql, price.CompanyID, price.Date, price.Open, price.High,
		price.Low, price.Close, price.Volume)
	if err != nil {
		log.Error().Err(err).Object("Price", price).Msg("error saving daily price to database")
	}

	return err
}
