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

package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/rs/zerolog"
)

var (
	ErrMissingDirectory = errors.New("csv directory not configured")
)

// CSV reads statements exported to a directory tree of the form
// <dir>/<TICKER>/{company,income,balance,cash_flow,prices}.csv. Missing
// files are skipped.
type CSV struct {
	dir string
}

func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

func (csvProvider *CSV) Name() string {
	return "csv"
}

func (csvProvider *CSV) ConfigDescription() map[string]string {
	return map[string]string{
		"csv.dir": "Directory containing one sub-directory of CSV files per ticker:",
	}
}

func (csvProvider *CSV) Description() string {
	return `Statements exported to local CSV files. Each ticker has a directory holding company.csv, income.csv, balance.csv, cash_flow.csv and prices.csv; any of the files may be omitted.`
}

type csvCompany struct {
	Name          string `csv:"name"`
	Exchange      string `csv:"exchange"`
	CompositeFigi string `csv:"composite_figi"`
	Currency      string `csv:"currency"`
	FiscalYearEnd string `csv:"fiscal_year_end_month"`
}

type csvIncome struct {
	PeriodEndDate     string `csv:"period_end_date"`
	PeriodType        string `csv:"period_type"`
	TotalRevenue      string `csv:"total_revenue"`
	CostOfRevenue     string `csv:"cost_of_revenue"`
	GrossProfit       string `csv:"gross_profit"`
	OperatingExpenses string `csv:"operating_expenses"`
	OperatingIncome   string `csv:"operating_income"`
	NetIncome         string `csv:"net_income"`
	BasicEPS          string `csv:"basic_eps"`
	DilutedEPS        string `csv:"diluted_eps"`
	SharesOutstanding string `csv:"shares_outstanding"`
}

type csvBalance struct {
	PeriodEndDate        string `csv:"period_end_date"`
	PeriodType           string `csv:"period_type"`
	TotalAssets          string `csv:"total_assets"`
	TotalLiabilities     string `csv:"total_liabilities"`
	TotalEquity          string `csv:"total_equity"`
	CashAndEquivalents   string `csv:"cash_and_equivalents"`
	ShortTermInvestments string `csv:"short_term_investments"`
	ShortTermDebt        string `csv:"short_term_debt"`
	LongTermDebt         string `csv:"long_term_debt"`
	TotalDebt            string `csv:"total_debt"`
	NetDebt              string `csv:"net_debt"`
	SharesOutstanding    string `csv:"shares_outstanding"`
}

type csvCashFlow struct {
	PeriodEndDate       string `csv:"period_end_date"`
	PeriodType          string `csv:"period_type"`
	OperatingCashFlow   string `csv:"operating_cash_flow"`
	CapitalExpenditures string `csv:"capital_expenditures"`
	FreeCashFlow        string `csv:"free_cash_flow"`
}

type csvPrice struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

// Fetch reads every CSV file stored for ticker
func (csvProvider *CSV) Fetch(ctx context.Context, ticker string) (*data.StatementSet, error) {
	logger := zerolog.Ctx(ctx)

	if csvProvider.dir == "" {
		return nil, ErrMissingDirectory
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	tickerDir := filepath.Join(csvProvider.dir, ticker)

	set := &data.StatementSet{
		Company: &data.Company{Ticker: ticker, Active: true},
	}

	companies := make([]*csvCompany, 0, 1)
	if err := readCSV(filepath.Join(tickerDir, "company.csv"), &companies); err != nil {
		return nil, err
	}

	if len(companies) > 0 {
		companies[0].apply(set.Company)
	}

	incomes := make([]*csvIncome, 0)
	if err := readCSV(filepath.Join(tickerDir, "income.csv"), &incomes); err != nil {
		return nil, err
	}

	for _, row := range incomes {
		date, periodType, err := csvPeriod(row.PeriodEndDate, row.PeriodType)
		if err != nil {
			logger.Warn().Err(err).Str("Ticker", ticker).Str("File", "income.csv").Msg("skipping row")
			continue
		}

		set.Income = append(set.Income, &data.IncomeStatement{
			PeriodEndDate:     date,
			PeriodType:        periodType,
			TotalRevenue:      data.ParseAmount(row.TotalRevenue),
			CostOfRevenue:     data.ParseAmount(row.CostOfRevenue),
			GrossProfit:       data.ParseAmount(row.GrossProfit),
			OperatingExpenses: data.ParseAmount(row.OperatingExpenses),
			OperatingIncome:   data.ParseAmount(row.OperatingIncome),
			NetIncome:         data.ParseAmount(row.NetIncome),
			BasicEPS:          data.ParseAmount(row.BasicEPS),
			DilutedEPS:        data.ParseAmount(row.DilutedEPS),
			SharesOutstanding: data.ParseShares(row.SharesOutstanding),
		})
	}

	balances := make([]*csvBalance, 0)
	if err := readCSV(filepath.Join(tickerDir, "balance.csv"), &balances); err != nil {
		return nil, err
	}

	for _, row := range balances {
		date, periodType, err := csvPeriod(row.PeriodEndDate, row.PeriodType)
		if err != nil {
			logger.Warn().Err(err).Str("Ticker", ticker).Str("File", "balance.csv").Msg("skipping row")
			continue
		}

		bal := &data.BalanceSheet{
			PeriodEndDate:        date,
			PeriodType:           periodType,
			TotalAssets:          data.ParseAmount(row.TotalAssets),
			TotalLiabilities:     data.ParseAmount(row.TotalLiabilities),
			TotalEquity:          data.ParseAmount(row.TotalEquity),
			CashAndEquivalents:   data.ParseAmount(row.CashAndEquivalents),
			ShortTermInvestments: data.ParseAmount(row.ShortTermInvestments),
			ShortTermDebt:        data.ParseAmount(row.ShortTermDebt),
			LongTermDebt:         data.ParseAmount(row.LongTermDebt),
			TotalDebt:            data.ParseAmount(row.TotalDebt),
			NetDebt:              data.ParseAmount(row.NetDebt),
			SharesOutstanding:    data.ParseShares(row.SharesOutstanding),
		}

		if !bal.NetDebt.Valid {
			bal.NetDebt = data.Sub(bal.TotalDebt, bal.CashAndEquivalents)
		}

		set.Balance = append(set.Balance, bal)
	}

	cashFlows := make([]*csvCashFlow, 0)
	if err := readCSV(filepath.Join(tickerDir, "cash_flow.csv"), &cashFlows); err != nil {
		return nil, err
	}

	for _, row := range cashFlows {
		date, periodType, err := csvPeriod(row.PeriodEndDate, row.PeriodType)
		if err != nil {
			logger.Warn().Err(err).Str("Ticker", ticker).Str("File", "cash_flow.csv").Msg("skipping row")
			continue
		}

		cf := &data.CashFlowStatement{
			PeriodEndDate:       date,
			PeriodType:          periodType,
			OperatingCashFlow:   data.ParseAmount(row.OperatingCashFlow),
			CapitalExpenditures: data.ParseAmount(row.CapitalExpenditures),
			FreeCashFlow:        data.ParseAmount(row.FreeCashFlow),
		}

		if !cf.FreeCashFlow.Valid {
			cf.FreeCashFlow = data.Sub(cf.OperatingCashFlow, cf.CapitalExpenditures)
		}

		set.CashFlow = append(set.CashFlow, cf)
	}

	prices := make([]*csvPrice, 0)
	if err := readCSV(filepath.Join(tickerDir, "prices.csv"), &prices); err != nil {
		return nil, err
	}

	for _, row := range prices {
		date, err := parseDate(row.Date)
		if err != nil {
			logger.Warn().Err(err).Str("Ticker", ticker).Str("File", "prices.csv").Msg("skipping row")
			continue
		}

		set.Prices = append(set.Prices, &data.DailyPrice{
			Date:   date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	logger.Info().Object("Set", set).Str("Dir", tickerDir).Msg("read statements from csv")

	return set, nil
}

func (row *csvCompany) apply(company *data.Company) {
	if row.Name != "" {
		company.Name = row.Name
	}

	company.Exchange = row.Exchange
	company.CompositeFigi = row.CompositeFigi

	if currency := strings.TrimSpace(row.Currency); currency != "" {
		company.Currency = &currency
	}

	if month, ok := parseMonth(row.FiscalYearEnd); ok {
		company.FiscalYearEndMonth = &month
	}
}

// readCSV unmarshals the file at path into out; a missing file leaves out
// untouched
func readCSV(path string, out any) error {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	if err := gocsv.UnmarshalBytes(contents, out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return nil
}

func csvPeriod(date, periodType string) (time.Time, fiscal.PeriodType, error) {
	parsedDate, err := parseDate(date)
	if err != nil {
		return time.Time{}, "", err
	}

	parsedType, err := fiscal.ParsePeriodType(periodType)
	if err != nil {
		return time.Time{}, "", err
	}

	return parsedDate, parsedType, nil
}
