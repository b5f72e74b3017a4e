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

package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/rs/zerolog/log"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrEmptySet        = errors.New("statement set has no company")
)

// priceLookback is how far before the oldest statement prices are loaded so
// that a period ending on a weekend or holiday still has a close
const priceLookback = 14 * 24 * time.Hour

type Library struct {
	DBUrl string `toml:"url"`
	Name  string `toml:"-"`
	Owner string `toml:"-"`

	Pool *pgxpool.Pool `toml:"-"`
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library LIMIT 1").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		pool.Close()
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// NumCompanies returns the number of active companies tracked in the library
func (myLibrary *Library) NumCompanies(ctx context.Context) (int, error) {
	count := 0
	err := myLibrary.Pool.QueryRow(ctx, "SELECT count(*) FROM companies WHERE active='t'").Scan(&count)
	return count, err
}

// TotalRecords returns the number of statement and price records stored
func (myLibrary *Library) TotalRecords(ctx context.Context) (int, error) {
	count := 0
	err := myLibrary.Pool.QueryRow(ctx, `SELECT
	(SELECT count(*) FROM income_statements) +
	(SELECT count(*) FROM balance_sheets) +
	(SELECT count(*) FROM cash_flow_statements) +
	(SELECT count(*) FROM daily_prices)`).Scan(&count)
	return count, err
}

// LastUpdated returns the date that any company was last refreshed
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	var lastUpdated time.Time
	err := myLibrary.Pool.QueryRow(ctx, "SELECT coalesce(max(last_updated), '0001-01-01'::timestamp) FROM companies").Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}

const companyColumns = `id, ticker, name, exchange, composite_figi, currency,
fiscal_year_end_month, active, last_updated`

// Companies returns the companies in the library ordered by ticker
func (myLibrary *Library) Companies(ctx context.Context, activeOnly bool) ([]*data.Company, error) {
	sql := "SELECT " + companyColumns + " FROM companies"
	if activeOnly {
		sql += " WHERE active='t'"
	}
	sql += " ORDER BY ticker"

	companies := make([]*data.Company, 0)
	if err := pgxscan.Select(ctx, myLibrary.Pool, &companies, sql); err != nil {
		return nil, err
	}

	return companies, nil
}

// CompanyByTicker returns the company listed under ticker
func (myLibrary *Library) CompanyByTicker(ctx context.Context, ticker string) (*data.Company, error) {
	company := &data.Company{}
	err := pgxscan.Get(ctx, myLibrary.Pool, company,
		"SELECT "+companyColumns+" FROM companies WHERE ticker=$1", strings.ToUpper(ticker))
	if pgxscan.NotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, ticker)
	}

	if err != nil {
		return nil, err
	}

	return company, nil
}

// Statements loads the most recent limit statements of each kind ending on
// or before asOf for the company, along with the daily prices that cover
// them. Records are returned newest first; the engine does its own ordering.
func (myLibrary *Library) Statements(ctx context.Context, companyID uuid.UUID, periodType fiscal.PeriodType, limit int, asOf time.Time) (align.Statements, error) {
	statements := align.Statements{}

	if err := pgxscan.Select(ctx, myLibrary.Pool, &statements.Income, `SELECT company_id,
	period_end_date, period_type, total_revenue, cost_of_revenue, gross_profit, operating_expenses,
	operating_income, net_income, basic_eps, diluted_eps, shares_outstanding
	FROM income_statements WHERE company_id=$1 AND period_type=$2 AND period_end_date <= $4
	ORDER BY period_end_date DESC LIMIT $3`, companyID, string(periodType), limit, asOf); err != nil {
		return statements, err
	}

	if err := pgxscan.Select(ctx, myLibrary.Pool, &statements.Balance, `SELECT company_id,
	period_end_date, period_type, total_assets, total_liabilities, total_equity,
	cash_and_equivalents, short_term_investments, short_term_debt, long_term_debt, total_debt,
	net_debt, shares_outstanding
	FROM balance_sheets WHERE company_id=$1 AND period_type=$2 AND period_end_date <= $4
	ORDER BY period_end_date DESC LIMIT $3`, companyID, string(periodType), limit, asOf); err != nil {
		return statements, err
	}

	if err := pgxscan.Select(ctx, myLibrary.Pool, &statements.CashFlow, `SELECT company_id,
	period_end_date, period_type, operating_cash_flow, capital_expenditures, free_cash_flow
	FROM cash_flow_statements WHERE company_id=$1 AND period_type=$2 AND period_end_date <= $4
	ORDER BY period_end_date DESC LIMIT $3`, companyID, string(periodType), limit, asOf); err != nil {
		return statements, err
	}

	if len(statements.Income) == 0 {
		return statements, nil
	}

	oldest := statements.Income[len(statements.Income)-1].PeriodEndDate
	if err := pgxscan.Select(ctx, myLibrary.Pool, &statements.Prices, `SELECT company_id,
	price_date, open, high, low, close, volume
	FROM daily_prices WHERE company_id=$1 AND price_date >= $2 AND price_date <= $3
	ORDER BY price_date`, companyID, oldest.Add(-priceLookback), asOf); err != nil {
		return statements, err
	}

	log.Debug().Str("CompanyID", companyID.String()).Int("NumIncome", len(statements.Income)).
		Int("NumBalance", len(statements.Balance)).Int("NumCashFlow", len(statements.CashFlow)).
		Int("NumPrices", len(statements.Prices)).Msg("loaded statements")

	return statements, nil
}

// SaveStatements stores the company and all of its records in a single
// transaction. The company is matched on ticker and every record is stamped
// with its id.
func (myLibrary *Library) SaveStatements(ctx context.Context, set *data.StatementSet) error {
	if set == nil || set.Company == nil {
		return ErrEmptySet
	}

	tx, err := myLibrary.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := saveSet(ctx, tx, set); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("could not rollback transaction")
		}
		return err
	}

	return tx.Commit(ctx)
}

func saveSet(ctx context.Context, tx pgx.Tx, set *data.StatementSet) error {
	if err := set.Company.SaveDB(ctx, tx); err != nil {
		return err
	}

	set.SetCompanyID(set.Company.ID)

	for _, inc := range set.Income {
		if err := inc.SaveDB(ctx, tx); err != nil {
			return err
		}
	}

	for _, bal := range set.Balance {
		if err := bal.SaveDB(ctx, tx); err != nil {
			return err
		}
	}

	for _, cf := range set.CashFlow {
		if err := cf.SaveDB(ctx, tx); err != nil {
			return err
		}
	}

	for _, price := range set.Prices {
		if err := price.SaveDB(ctx, tx); err != nil {
			return err
		}
	}

	return nil
}

// SetCompositeFigi records the composite FIGI found for a company
func (myLibrary *Library) SetCompositeFigi(ctx context.Context, companyID uuid.UUID, figi string) error {
	_, err := myLibrary.Pool.Exec(ctx, "UPDATE companies SET composite_figi=$2 WHERE id=$1", companyID, figi)
	return err
}
