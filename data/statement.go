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
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// IncomeStatement holds the figures reported on a company's income
// statement for a single fiscal period. Amounts are reported in the
// company's reporting currency; any field may be null when the filing does
// not contain it.
type IncomeStatement struct {
	CompanyID     uuid.UUID         `db:"company_id" json:"company_id"`
	PeriodEndDate time.Time         `db:"period_end_date" json:"period_end_date"`
	PeriodType    fiscal.PeriodType `db:"period_type" json:"period_type"`

	// Aggregate revenue recognized during the period
	TotalRevenue decimal.NullDecimal `db:"total_revenue" json:"total_revenue"`

	// Cost of goods produced and sold and services rendered
	CostOfRevenue decimal.NullDecimal `db:"cost_of_revenue" json:"cost_of_revenue"`

	// Revenue less cost of revenue
	GrossProfit decimal.NullDecimal `db:"gross_profit" json:"gross_profit"`

	OperatingExpenses decimal.NullDecimal `db:"operating_expenses" json:"operating_expenses"`

	// Gross profit less operating expenses
	OperatingIncome decimal.NullDecimal `db:"operating_income" json:"operating_income"`

	// Profit or loss for the period attributable to the parent, net of taxes
	NetIncome decimal.NullDecimal `db:"net_income" json:"net_income"`

	BasicEPS   decimal.NullDecimal `db:"basic_eps" json:"basic_eps"`
	DilutedEPS decimal.NullDecimal `db:"diluted_eps" json:"diluted_eps"`

	// Number of common shares outstanding at the end of the period
	SharesOutstanding *int64 `db:"shares_outstanding" json:"shares_outstanding"`
}

// BalanceSheet holds a company's financial position at the end of a fiscal period
type BalanceSheet struct {
	CompanyID     uuid.UUID         `db:"company_id" json:"company_id"`
	PeriodEndDate time.Time         `db:"period_end_date" json:"period_end_date"`
	PeriodType    fiscal.PeriodType `db:"period_type" json:"period_type"`

	TotalAssets          decimal.NullDecimal `db:"total_assets" json:"total_assets"`
	TotalLiabilities     decimal.NullDecimal `db:"total_liabilities" json:"total_liabilities"`
	TotalEquity          decimal.NullDecimal `db:"total_equity" json:"total_equity"`
	CashAndEquivalents   decimal.NullDecimal `db:"cash_and_equivalents" json:"cash_and_equivalents"`
	ShortTermInvestments decimal.NullDecimal `db:"short_term_investments" json:"short_term_investments"`
	ShortTermDebt        decimal.NullDecimal `db:"short_term_debt" json:"short_term_debt"`
	LongTermDebt         decimal.NullDecimal `db:"long_term_debt" json:"long_term_debt"`

	// Current and non-current debt owed, including capital lease obligations
	TotalDebt decimal.NullDecimal `db:"total_debt" json:"total_debt"`

	// Total debt less cash and equivalents
	NetDebt decimal.NullDecimal `db:"net_debt" json:"net_debt"`

	SharesOutstanding *int64 `db:"shares_outstanding" json:"shares_outstanding"`
}

// CashFlowStatement holds cash generated and spent during a fiscal period
type CashFlowStatement struct {
	CompanyID     uuid.UUID         `db:"company_id" json:"company_id"`
	PeriodEndDate time.Time         `db:"period_end_date" json:"period_end_date"`
	PeriodType    fiscal.PeriodType `db:"period_type" json:"period_type"`

	OperatingCashFlow   decimal.NullDecimal `db:"operating_cash_flow" json:"operating_cash_flow"`
	CapitalExpenditures decimal.NullDecimal `db:"capital_expenditures" json:"capital_expenditures"`

	// Operating cash flow less capital expenditures
	FreeCashFlow decimal.NullDecimal `db:"free_cash_flow" json:"free_cash_flow"`
}

func (inc *IncomeStatement) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CompanyID", inc.CompanyID.String())
	e.Time("PeriodEndDate", inc.PeriodEndDate)
	e.Str("PeriodType", string(inc.PeriodType))
}

func (bal *BalanceSheet) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CompanyID", bal.CompanyID.String())
	e.Time("PeriodEndDate", bal.PeriodEndDate)
	e.Str("PeriodType", string(bal.PeriodType))
}

func (cf *CashFlowStatement) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CompanyID", cf.CompanyID.String())
	e.Time("PeriodEndDate", cf.PeriodEndDate)
	e.Str("PeriodType", string(cf.PeriodType))
}

func (inc *IncomeStatement) SaveDB(ctx context.Context, tx pgx.Tx) error {
	sql := `INSERT INTO income_statements (
		"company_id",
		"period_end_date",
		"period_type",
		"total_revenue",
		"cost_of_revenue",
		"gross_profit",
		"operating_expenses",
		"operating_income",
		"net_income",
		"basic_eps",
		"diluted_eps",
		"shares_outstanding"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	) ON CONFLICT ON CONSTRAINT income_statements_pkey
	DO UPDATE SET
		total_revenue = EXCLUDED.total_revenue,
		cost_of_revenue = EXCLUDED.cost_of_revenue,
		gross_profit = EXCLUDED.gross_profit,
		operating_expenses = EXCLUDED.operating_expenses,
		operating_income = EXCLUDED.operating_income,
		net_income = EXCLUDED.net_income,
		basic_eps = EXCLUDED.basic_eps,
		diluted_eps = EXCLUDED.diluted_eps,
		shares_outstanding = EXCLUDED.shares_outstanding`

	_, err := tx.Exec(ctx, sql, inc.CompanyID, fiscal.Day(inc.PeriodEndDate), inc.PeriodType,
		inc.TotalRevenue, inc.CostOfRevenue, inc.GrossProfit, inc.OperatingExpenses,
		inc.OperatingIncome, inc.NetIncome, inc.BasicEPS, inc.DilutedEPS, inc.SharesOutstanding)
	if err != nil {
		log.Error().Err(err).Object("Income", inc).Msg("error saving income statement to database")
	}

	return err
}

func (bal *BalanceSheet) SaveDB(ctx context.Context, tx pgx.Tx) error {
	sql := `INSERT INTO balance_sheets (
		"company_id",
		"period_end_date",
		"period_type",
		"total_assets",
		"total_liabilities",
		"total_equity",
		"cash_and_equivalents",
		"short_term_investments",
		"short_term_debt",
		"long_term_debt",
		"total_debt",
		"net_debt",
		"shares_outstanding"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
	) ON CONFLICT ON CONSTRAINT balance_sheets_pkey
	DO UPDATE SET
		total_assets = EXCLUDED.total_assets,
		total_liabilities = EXCLUDED.total_liabilities,
		total_equity = EXCLUDED.total_equity,
		cash_and_equivalents = EXCLUDED.cash_and_equivalents,
		short_term_investments = EXCLUDED.short_term_investments,
		short_term_debt = EXCLUDED.short_term_debt,
		long_term_debt = EXCLUDED.long_term_debt,
		total_debt = EXCLUDED.total_debt,
		net_debt = EXCLUDED.net_debt,
		shares_outstanding = EXCLUDED.shares_outstanding`

	_, err := tx.Exec(ctx, sql, bal.CompanyID, fiscal.Day(bal.PeriodEndDate), bal.PeriodType,
		bal.TotalAssets, bal.TotalLiabilities, bal.TotalEquity, bal.CashAndEquivalents,
		bal.ShortTermInvestments, bal.ShortTermDebt, bal.LongTermDebt, bal.TotalDebt,
		bal.NetDebt, bal.SharesOutstanding)
	if err != nil {
		log.Error().Err(err).Object("Balance", bal).Msg("error saving balance sheet to database")
	}

	return err
}

func (cf *CashFlowStatement) SaveDB(ctx context.Context, tx pgx.Tx) error {
	sql := `INSERT INTO cash_flow_statements (
		"company_id",
		"period_end_date",
		"period_type",
		"operating_cash_flow",
		"capital_expenditures",
		"free_cash_flow"
	) VALUES (
		$1, $2, $3, $4, $5, $6
	) ON CONFLICT ON CONSTRAINT cash_flow_statements_pkey
	DO UPDATE SET
		operating_cash_flow = EXCLUDED.operating_cash_flow,
		capital_expenditures = EXCLUDED.capital_expenditures,
		free_cash_flow = EXCLUDED.free_cash_flow`

	_, err := tx.Exec(ctx, sql, cf.CompanyID, fiscal.Day(cf.PeriodEndDate), cf.PeriodType,
		cf.OperatingCashFlow, cf.CapitalExpenditures, cf.FreeCashFlow)
	if err != nil {
		log.Error().Err(err).Object("CashFlow", cf).Msg("error saving cash flow statement to database")
	}

	return err
}
