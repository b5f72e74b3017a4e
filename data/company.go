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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultFiscalYearEndMonth = 12
	DefaultCurrency           = "USD"
)

type Company struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Ticker             string    `db:"ticker" json:"ticker"`
	Name               string    `db:"name" json:"name"`
	Exchange           string    `db:"exchange" json:"exchange"`
	CompositeFigi      string    `db:"composite_figi" json:"composite_figi" toml:"composite_figi"`
	Currency           *string   `db:"currency" json:"currency"`
	FiscalYearEndMonth *int      `db:"fiscal_year_end_month" json:"fiscal_year_end_month" toml:"fiscal_year_end_month"`
	Active             bool      `db:"active" json:"active"`
	LastUpdated        time.Time `db:"last_updated" json:"last_updated"`
}

// FiscalYearEnd returns the month the company's fiscal year closes in,
// December when it is unknown. The month is not validated; use Calendar.
func (company *Company) FiscalYearEnd() int {
	if company.FiscalYearEndMonth == nil {
		return DefaultFiscalYearEndMonth
	}

	return *company.FiscalYearEndMonth
}

// Calendar returns the fiscal calendar of the company. An out of range
// fiscal-year-end month is an error wrapping fiscal.ErrInvalidFiscalYearEnd.
func (company *Company) Calendar() (fiscal.Calendar, error) {
	cal, err := fiscal.NewCalendar(company.FiscalYearEnd())
	if err != nil {
		return fiscal.Calendar{}, fmt.Errorf("%s: %w", company.Ticker, err)
	}

	return cal, nil
}

// CurrencyCode returns the ISO currency the company reports in, USD when unknown
func (company *Company) CurrencyCode() string {
	if company.Currency == nil || strings.TrimSpace(*company.Currency) == "" {
		return DefaultCurrency
	}

	return strings.ToUpper(strings.TrimSpace(*company.Currency))
}

func (company *Company) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", company.Ticker)
	e.Str("CompanyID", company.ID.String())
	e.Str("CompositeFigi", company.CompositeFigi)
	e.Int("FiscalYearEnd", company.FiscalYearEnd())
	e.Str("Currency", company.CurrencyCode())
}

// SaveDB upserts the company by ticker and sets company.ID to the stored id
func (company *Company) SaveDB(ctx context.Context, tx pgx.Tx) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}

	if company.LastUpdated.IsZero() {
		company.LastUpdated = time.Now()
	}

	sql := `INSERT INTO companies (
		"id",
		"ticker",
		"name",
		"exchange",
		"composite_figi",
		"currency",
		"fiscal_year_end_month",
		"active",
		"last_updated"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	) ON CONFLICT (ticker) DO UPDATE SET
		name = EXCLUDED.name,
		exchange = EXCLUDED.exchange,
		composite_figi = coalesce(nullif(EXCLUDED.composite_figi, ''), companies.composite_figi),
		currency = coalesce(EXCLUDED.currency, companies.currency),
		fiscal_year_end_month = coalesce(EXCLUDED.fiscal_year_end_month, companies.fiscal_year_end_month),
		active = EXCLUDED.active,
		last_updated = EXCLUDED.last_updated
	RETURNING id`

	err := tx.QueryRow(ctx, sql, company.ID, company.Ticker, company.Name, company.Exchange,
		company.CompositeFigi, company.Currency, company.FiscalYearEndMonth, company.Active,
		company.LastUpdated).Scan(&company.ID)
	if err != nil {
		log.Error().Err(err).Object("Company", company).Msg("save company to DB failed")
	}

	return err
}
