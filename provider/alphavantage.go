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
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	alphaVantageURL = "https://www.alphavantage.co"
)

type AlphaVantage struct {
	apiKey  string
	client  *resty.Client
	limiter *rate.Limiter
}

// NewAlphaVantage returns a provider that allows at most ratePerMinute
// requests per minute; a non-positive rate is unlimited
func NewAlphaVantage(apiKey string, ratePerMinute int) *AlphaVantage {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(ratePerMinute)/float64(61)), 1)
	}

	return &AlphaVantage{
		apiKey:  apiKey,
		client:  resty.New().SetHeader("User-Agent", pkginfo.UserAgent()).SetBaseURL(alphaVantageURL),
		limiter: limiter,
	}
}

// WithBaseURL points the provider at a different API host
func (av *AlphaVantage) WithBaseURL(url string) *AlphaVantage {
	av.client.SetBaseURL(url)
	return av
}

func (av *AlphaVantage) Name() string {
	return "alphavantage"
}

func (av *AlphaVantage) ConfigDescription() map[string]string {
	return map[string]string{
		"alphavantage.apikey":     "Enter your Alpha Vantage API key:",
		"alphavantage.rate_limit": "What is the maximum number of requests per minute?",
	}
}

func (av *AlphaVantage) Description() string {
	return `Alpha Vantage provides as-reported annual and quarterly income statements, balance sheets, and cash flow statements along with reported earnings per share and daily prices for US listed equities.`
}

// Private interface

type avReports[T any] struct {
	Symbol           string `json:"symbol"`
	AnnualReports    []T    `json:"annualReports"`
	QuarterlyReports []T    `json:"quarterlyReports"`
}

type avIncome struct {
	FiscalDateEnding  string `json:"fiscalDateEnding"`
	ReportedCurrency  string `json:"reportedCurrency"`
	TotalRevenue      string `json:"totalRevenue"`
	CostOfRevenue     string `json:"costOfRevenue"`
	GrossProfit       string `json:"grossProfit"`
	OperatingExpenses string `json:"operatingExpenses"`
	OperatingIncome   string `json:"operatingIncome"`
	NetIncome         string `json:"netIncome"`
}

type avBalance struct {
	FiscalDateEnding             string `json:"fiscalDateEnding"`
	TotalAssets                  string `json:"totalAssets"`
	TotalLiabilities             string `json:"totalLiabilities"`
	TotalShareholderEquity       string `json:"totalShareholderEquity"`
	CashAndCashEquivalents       string `json:"cashAndCashEquivalentsAtCarryingValue"`
	ShortTermInvestments         string `json:"shortTermInvestments"`
	ShortTermDebt                string `json:"shortTermDebt"`
	LongTermDebt                 string `json:"longTermDebt"`
	ShortLongTermDebtTotal       string `json:"shortLongTermDebtTotal"`
	CommonStockSharesOutstanding string `json:"commonStockSharesOutstanding"`
}

type avCashFlow struct {
	FiscalDateEnding    string `json:"fiscalDateEnding"`
	OperatingCashflow   string `json:"operatingCashflow"`
	CapitalExpenditures string `json:"capitalExpenditures"`
}

type avEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	ReportedEPS      string `json:"reportedEPS"`
}

type avEarnings struct {
	Symbol            string       `json:"symbol"`
	AnnualEarnings    []*avEarning `json:"annualEarnings"`
	QuarterlyEarnings []*avEarning `json:"quarterlyEarnings"`
}

type avOverview struct {
	Symbol        string `json:"Symbol"`
	Name          string `json:"Name"`
	Exchange      string `json:"Exchange"`
	Currency      string `json:"Currency"`
	FiscalYearEnd string `json:"FiscalYearEnd"`
}

// Fetch downloads the company overview, all three statements, reported
// earnings, and daily prices for ticker
func (av *AlphaVantage) Fetch(ctx context.Context, ticker string) (*data.StatementSet, error) {
	logger := zerolog.Ctx(ctx)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	overview := avOverview{}
	if err := av.get(ctx, "OVERVIEW", ticker, nil, &overview); err != nil {
		return nil, err
	}

	income := avReports[*avIncome]{}
	if err := av.get(ctx, "INCOME_STATEMENT", ticker, nil, &income); err != nil {
		return nil, err
	}

	balance := avReports[*avBalance]{}
	if err := av.get(ctx, "BALANCE_SHEET", ticker, nil, &balance); err != nil {
		return nil, err
	}

	cashFlow := avReports[*avCashFlow]{}
	if err := av.get(ctx, "CASH_FLOW", ticker, nil, &cashFlow); err != nil {
		return nil, err
	}

	earnings := avEarnings{}
	if err := av.get(ctx, "EARNINGS", ticker, nil, &earnings); err != nil {
		return nil, err
	}

	priceBody, err := av.query(ctx, "TIME_SERIES_DAILY", ticker, map[string]string{"outputsize": "full"})
	if err != nil {
		return nil, err
	}

	set := &data.StatementSet{
		Company: overview.toCompany(ticker),
	}

	annualEPS := earnings.byDate(earnings.AnnualEarnings)
	quarterlyEPS := earnings.byDate(earnings.QuarterlyEarnings)

	set.Income = append(set.Income, avIncomeStatements(income.AnnualReports, fiscal.Annual, annualEPS)...)
	set.Income = append(set.Income, avIncomeStatements(income.QuarterlyReports, fiscal.Quarterly, quarterlyEPS)...)
	set.Balance = append(set.Balance, avBalanceSheets(balance.AnnualReports, fiscal.Annual)...)
	set.Balance = append(set.Balance, avBalanceSheets(balance.QuarterlyReports, fiscal.Quarterly)...)
	set.CashFlow = append(set.CashFlow, avCashFlows(cashFlow.AnnualReports, fiscal.Annual)...)
	set.CashFlow = append(set.CashFlow, avCashFlows(cashFlow.QuarterlyReports, fiscal.Quarterly)...)
	set.Prices = avDailyPrices(priceBody)

	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	logger.Info().Object("Set", set).Msg("downloaded statements from alpha vantage")

	return set, nil
}

func (av *AlphaVantage) get(ctx context.Context, function, ticker string, params map[string]string, result any) error {
	body, err := av.query(ctx, function, ticker, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("could not decode %s response: %w", function, err)
	}

	return nil
}

func (av *AlphaVantage) query(ctx context.Context, function, ticker string, params map[string]string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	if av.apiKey == "" {
		return nil, fmt.Errorf("%w: alphavantage.apikey", ErrMissingAPIKey)
	}

	if err := av.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := av.client.R().
		SetContext(ctx).
		SetQueryParam("function", function).
		SetQueryParam("symbol", ticker).
		SetQueryParam("apikey", av.apiKey).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		logger.Error().Err(err).Str("Function", function).Msg("resty returned an error when querying alpha vantage")
		return nil, err
	}

	if err := checkStatus(resp.StatusCode(), function); err != nil {
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Function", function).Str("Ticker", ticker).Msg("alpha vantage returned an invalid HTTP response")
		return nil, err
	}

	body := resp.Body()
	if msg := avErrorMessage(body); msg != "" {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrAPI, function, ticker, msg)
	}

	return body, nil
}

// avErrorMessage returns the message of an error payload; alpha vantage
// reports errors and throttling with a 200 status code
func avErrorMessage(body []byte) string {
	for _, key := range []string{"Error Message", "Information", "Note"} {
		if result := gjson.GetBytes(body, key); result.Exists() {
			return result.String()
		}
	}

	return ""
}

func (overview *avOverview) toCompany(ticker string) *data.Company {
	company := &data.Company{
		Ticker:   ticker,
		Name:     overview.Name,
		Exchange: overview.Exchange,
		Active:   true,
	}

	if currency := strings.TrimSpace(overview.Currency); currency != "" {
		company.Currency = &currency
	}

	if month, ok := parseMonth(overview.FiscalYearEnd); ok {
		company.FiscalYearEndMonth = &month
	}

	return company
}

func (earnings *avEarnings) byDate(records []*avEarning) map[string]string {
	eps := make(map[string]string, len(records))
	for _, rec := range records {
		eps[rec.FiscalDateEnding] = rec.ReportedEPS
	}

	return eps
}

func avIncomeStatements(reports []*avIncome, periodType fiscal.PeriodType, eps map[string]string) []*data.IncomeStatement {
	out := make([]*data.IncomeStatement, 0, len(reports))
	for _, report := range reports {
		date, err := parseDate(report.FiscalDateEnding)
		if err != nil {
			continue
		}

		out = append(out, &data.IncomeStatement{
			PeriodEndDate:     date,
			PeriodType:        periodType,
			TotalRevenue:      data.ParseAmount(report.TotalRevenue),
			CostOfRevenue:     data.ParseAmount(report.CostOfRevenue),
			GrossProfit:       data.ParseAmount(report.GrossProfit),
			OperatingExpenses: data.ParseAmount(report.OperatingExpenses),
			OperatingIncome:   data.ParseAmount(report.OperatingIncome),
			NetIncome:         data.ParseAmount(report.NetIncome),
			BasicEPS:          data.ParseAmount(eps[report.FiscalDateEnding]),
		})
	}

	return out
}

func avBalanceSheets(reports []*avBalance, periodType fiscal.PeriodType) []*data.BalanceSheet {
	out := make([]*data.BalanceSheet, 0, len(reports))
	for _, report := range reports {
		date, err := parseDate(report.FiscalDateEnding)
		if err != nil {
			continue
		}

		totalDebt := data.ParseAmount(report.ShortLongTermDebtTotal)
		cash := data.ParseAmount(report.CashAndCashEquivalents)

		out = append(out, &data.BalanceSheet{
			PeriodEndDate:        date,
			PeriodType:           periodType,
			TotalAssets:          data.ParseAmount(report.TotalAssets),
			TotalLiabilities:     data.ParseAmount(report.TotalLiabilities),
			TotalEquity:          data.ParseAmount(report.TotalShareholderEquity),
			CashAndEquivalents:   cash,
			ShortTermInvestments: data.ParseAmount(report.ShortTermInvestments),
			ShortTermDebt:        data.ParseAmount(report.ShortTermDebt),
			LongTermDebt:         data.ParseAmount(report.LongTermDebt),
			TotalDebt:            totalDebt,
			NetDebt:              data.Sub(totalDebt, cash),
			SharesOutstanding:    data.ParseShares(report.CommonStockSharesOutstanding),
		})
	}

	return out
}

func avCashFlows(reports []*avCashFlow, periodType fiscal.PeriodType) []*data.CashFlowStatement {
	out := make([]*data.CashFlowStatement, 0, len(reports))
	for _, report := range reports {
		date, err := parseDate(report.FiscalDateEnding)
		if err != nil {
			continue
		}

		ocf := data.ParseAmount(report.OperatingCashflow)
		capex := data.ParseAmount(report.CapitalExpenditures)

		out = append(out, &data.CashFlowStatement{
			PeriodEndDate:       date,
			PeriodType:          periodType,
			OperatingCashFlow:   ocf,
			CapitalExpenditures: capex,
			FreeCashFlow:        data.Sub(ocf, capex),
		})
	}

	return out
}

func avDailyPrices(body []byte) []*data.DailyPrice {
	series := gjson.GetBytes(body, "Time Series (Daily)")
	prices := make([]*data.DailyPrice, 0)

	series.ForEach(func(key, val gjson.Result) bool {
		date, err := parseDate(key.String())
		if err != nil {
			return true
		}

		prices = append(prices, &data.DailyPrice{
			Date:   date,
			Open:   val.Get("1\\. open").Float(),
			High:   val.Get("2\\. high").Float(),
			Low:    val.Get("3\\. low").Float(),
			Close:  val.Get("4\\. close").Float(),
			Volume: val.Get("5\\. volume").Int(),
		})

		return true
	})

	return prices
}

func parseDate(val string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(val))
	if err != nil {
		return time.Time{}, err
	}

	return fiscal.Day(date), nil
}

// parseMonth accepts full or abbreviated English month names as well as
// month numbers
func parseMonth(val string) (int, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, false
	}

	for month := time.January; month <= time.December; month++ {
		name := month.String()
		if strings.EqualFold(val, name) || strings.EqualFold(val, name[:3]) {
			return int(month), true
		}
	}

	var month int
	if _, err := fmt.Sscanf(val, "%d", &month); err == nil && month >= 1 && month <= 12 {
		return month, true
	}

	return 0, false
}
