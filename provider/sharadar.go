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
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	nasdaqDataLinkURL = "https://data.nasdaq.com/api/v3/datatables"
)

// column positions in the SHARADAR/SF1 datatable
const (
	sf1Dimension     = "1"
	sf1ReportPeriod  = "4"
	sf1Assets        = "7"
	sf1Capex         = "13"
	sf1CashNeq       = "14"
	sf1CostOfRevenue = "16"
	sf1Debt          = "20"
	sf1DebtCurrent   = "21"
	sf1DebtNonCur    = "22"
	sf1EPS           = "35"
	sf1EPSDiluted    = "36"
	sf1Equity        = "38"
	sf1FCF           = "44"
	sf1GrossProfit   = "47"
	sf1InvestmentsC  = "55"
	sf1Liabilities   = "57"
	sf1NCFO          = "69"
	sf1NetIncome     = "71"
	sf1OpEx          = "77"
	sf1OpIncome      = "78"
	sf1Revenue       = "91"
	sf1SharesBasic   = "101"
)

// column positions in the SHARADAR/TICKERS datatable
const (
	tickersName     = "3"
	tickersExchange = "4"
	tickersCurrency = "18"
)

type Sharadar struct {
	apiKey  string
	client  *resty.Client
	limiter *rate.Limiter
}

func NewSharadar(apiKey string) *Sharadar {
	return &Sharadar{
		apiKey:  apiKey,
		client:  resty.New().SetHeader("User-Agent", pkginfo.UserAgent()).SetBaseURL(nasdaqDataLinkURL),
		limiter: rate.NewLimiter(rate.Limit(float64(300)/float64(61)), 1),
	}
}

// WithBaseURL points the provider at a different API host
func (sharadar *Sharadar) WithBaseURL(url string) *Sharadar {
	sharadar.client.SetBaseURL(url)
	return sharadar
}

func (sharadar *Sharadar) Name() string {
	return "sharadar"
}

func (sharadar *Sharadar) ConfigDescription() map[string]string {
	return map[string]string{
		"nasdaq.apikey": "Enter your Nasdaq Data Link API key:",
	}
}

func (sharadar *Sharadar) Description() string {
	return `Sharadar Core US Fundamentals (SF1) via Nasdaq Data Link. As-reported quarterly (ARQ) and annual (ARY) statements are imported; the fiscal year end is taken from the most recent annual report.`
}

// Fetch downloads the as-reported annual and quarterly fundamentals for ticker
func (sharadar *Sharadar) Fetch(ctx context.Context, ticker string) (*data.StatementSet, error) {
	logger := zerolog.Ctx(ctx)

	if sharadar.apiKey == "" {
		return nil, fmt.Errorf("%w: nasdaq.apikey", ErrMissingAPIKey)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	tickerRows, err := sharadar.datatable(ctx, "/SHARADAR/TICKERS", map[string]string{
		"ticker": ticker,
		"table":  "SF1",
	})
	if err != nil {
		return nil, err
	}

	set := &data.StatementSet{
		Company: &data.Company{Ticker: ticker, Active: true},
	}

	if len(tickerRows) > 0 {
		set.Company.Name = tickerRows[0].Get(tickersName).String()
		set.Company.Exchange = tickerRows[0].Get(tickersExchange).String()
		if currency := tickerRows[0].Get(tickersCurrency).String(); currency != "" {
			set.Company.Currency = &currency
		}
	}

	rows, err := sharadar.datatable(ctx, "/SHARADAR/SF1", map[string]string{
		"ticker":    ticker,
		"dimension": "ARQ,ARY",
	})
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		sharadarRecords(row, set)
	}

	if month, ok := sharadarFiscalYearEnd(set.Income); ok {
		set.Company.FiscalYearEndMonth = &month
	}

	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	logger.Info().Object("Set", set).Msg("downloaded fundamentals from sharadar")

	return set, nil
}

// datatable reads every page of a datatable query
func (sharadar *Sharadar) datatable(ctx context.Context, path string, params map[string]string) ([]gjson.Result, error) {
	logger := zerolog.Ctx(ctx)
	rows := make([]gjson.Result, 0)
	cursor := ""

	for {
		if err := sharadar.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req := sharadar.client.R().
			SetContext(ctx).
			SetQueryParam("api_key", sharadar.apiKey).
			SetQueryParams(params)

		if cursor != "" {
			req.SetQueryParam("qopts.cursor_id", cursor)
		}

		resp, err := req.Get(path)
		if err != nil {
			logger.Error().Err(err).Str("Path", path).Msg("failed to download datatable")
			return nil, err
		}

		if err := checkStatus(resp.StatusCode(), path); err != nil {
			logger.Error().Int("StatusCode", resp.StatusCode()).Str("Path", path).Bytes("Body", resp.Body()).Msg("error when requesting url")
			return nil, err
		}

		responseBody := resp.Body()
		rows = append(rows, gjson.GetBytes(responseBody, "datatable.data").Array()...)

		cursor = gjson.GetBytes(responseBody, "meta.next_cursor_id").String()
		if cursor == "" {
			return rows, nil
		}

		logger.Debug().Str("Cursor", cursor).Str("Path", path).Msg("fetching next page")
	}
}

// sharadarRecords converts a single SF1 row into statements and adds them to set
func sharadarRecords(row gjson.Result, set *data.StatementSet) {
	var periodType fiscal.PeriodType
	switch row.Get(sf1Dimension).String() {
	case "ARQ":
		periodType = fiscal.Quarterly
	case "ARY":
		periodType = fiscal.Annual
	default:
		return
	}

	date, err := parseDate(row.Get(sf1ReportPeriod).String())
	if err != nil {
		return
	}

	amount := func(column string) decimal.NullDecimal {
		return data.ParseAmount(row.Get(column).Raw)
	}

	debt := amount(sf1Debt)
	cash := amount(sf1CashNeq)

	set.Income = append(set.Income, &data.IncomeStatement{
		PeriodEndDate:     date,
		PeriodType:        periodType,
		TotalRevenue:      amount(sf1Revenue),
		CostOfRevenue:     amount(sf1CostOfRevenue),
		GrossProfit:       amount(sf1GrossProfit),
		OperatingExpenses: amount(sf1OpEx),
		OperatingIncome:   amount(sf1OpIncome),
		NetIncome:         amount(sf1NetIncome),
		BasicEPS:          amount(sf1EPS),
		DilutedEPS:        amount(sf1EPSDiluted),
		SharesOutstanding: data.ParseShares(row.Get(sf1SharesBasic).Raw),
	})

	set.Balance = append(set.Balance, &data.BalanceSheet{
		PeriodEndDate:        date,
		PeriodType:           periodType,
		TotalAssets:          amount(sf1Assets),
		TotalLiabilities:     amount(sf1Liabilities),
		TotalEquity:          amount(sf1Equity),
		CashAndEquivalents:   cash,
		ShortTermInvestments: amount(sf1InvestmentsC),
		ShortTermDebt:        amount(sf1DebtCurrent),
		LongTermDebt:         amount(sf1DebtNonCur),
		TotalDebt:            debt,
		NetDebt:              data.Sub(debt, cash),
	})

	set.CashFlow = append(set.CashFlow, &data.CashFlowStatement{
		PeriodEndDate:       date,
		PeriodType:          periodType,
		OperatingCashFlow:   amount(sf1NCFO),
		CapitalExpenditures: amount(sf1Capex),
		FreeCashFlow:        amount(sf1FCF),
	})
}

// sharadarFiscalYearEnd returns the month of the most recent annual report
func sharadarFiscalYearEnd(incomes []*data.IncomeStatement) (int, bool) {
	var latest *data.IncomeStatement
	for _, inc := range incomes {
		if inc.PeriodType != fiscal.Annual {
			continue
		}

		if latest == nil || inc.PeriodEndDate.After(latest.PeriodEndDate) {
			latest = inc
		}
	}

	if latest == nil {
		return 0, false
	}

	return int(latest.PeriodEndDate.Month()), true
}
