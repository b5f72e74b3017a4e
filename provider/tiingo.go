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
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	tiingoURL = "https://api.tiingo.com"

	// tiingo allows 50 requests per hour on the free tier
	tiingoRequestsPerHour = 50
)

type Tiingo struct {
	apiKey  string
	client  *resty.Client
	limiter *rate.Limiter

	// Years of price history to request
	Years int
}

func NewTiingo(apiKey string) *Tiingo {
	return &Tiingo{
		apiKey:  apiKey,
		client:  resty.New().SetHeader("User-Agent", pkginfo.UserAgent()).SetBaseURL(tiingoURL),
		limiter: rate.NewLimiter(rate.Every(time.Hour/tiingoRequestsPerHour), 2),
		Years:   10,
	}
}

// WithBaseURL points the provider at a different API host
func (tiingo *Tiingo) WithBaseURL(url string) *Tiingo {
	tiingo.client.SetBaseURL(url)
	return tiingo
}

func (tiingo *Tiingo) Name() string {
	return "tiingo"
}

func (tiingo *Tiingo) ConfigDescription() map[string]string {
	return map[string]string{
		"tiingo.apikey": "Enter your tiingo API key:",
	}
}

func (tiingo *Tiingo) Description() string {
	return `Tiingo provides end-of-day prices for US and Chinese equities. Only prices are imported from Tiingo; combine it with a fundamentals provider to compute valuation metrics.`
}

// Private interface

type tiingoMeta struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	ExchangeCode string `json:"exchangeCode"`
}

type tiingoEod struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Fetch downloads company metadata and daily prices for ticker. The
// returned set contains no statements.
func (tiingo *Tiingo) Fetch(ctx context.Context, ticker string) (*data.StatementSet, error) {
	logger := zerolog.Ctx(ctx)

	if tiingo.apiKey == "" {
		return nil, fmt.Errorf("%w: tiingo.apikey", ErrMissingAPIKey)
	}

	// reformat ticker for tiingo
	tiingoTicker := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ticker)), "/", "-")

	meta := tiingoMeta{}
	if err := tiingo.get(ctx, fmt.Sprintf("/tiingo/daily/%s", tiingoTicker), nil, &meta); err != nil {
		return nil, err
	}

	startDate := time.Now().AddDate(-tiingo.Years, 0, 0).Format("2006-01-02")
	quotes := make([]*tiingoEod, 0)
	if err := tiingo.get(ctx, fmt.Sprintf("/tiingo/daily/%s/prices", tiingoTicker),
		map[string]string{"startDate": startDate}, &quotes); err != nil {
		return nil, err
	}

	set := &data.StatementSet{
		Company: &data.Company{
			Ticker:   strings.ToUpper(strings.TrimSpace(ticker)),
			Name:     meta.Name,
			Exchange: meta.ExchangeCode,
			Active:   true,
		},
		Prices: make([]*data.DailyPrice, 0, len(quotes)),
	}

	for _, quote := range quotes {
		quoteDate, err := time.Parse(time.RFC3339Nano, quote.Date)
		if err != nil {
			logger.Error().Err(err).Str("TiingoDate", quote.Date).Msg("could not parse date from tiingo eod object")
			continue
		}

		set.Prices = append(set.Prices, &data.DailyPrice{
			Date:   fiscal.Day(quoteDate),
			Open:   quote.Open,
			High:   quote.High,
			Low:    quote.Low,
			Close:  quote.Close,
			Volume: int64(quote.Volume),
		})
	}

	if len(set.Prices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	logger.Info().Object("Set", set).Msg("downloaded prices from tiingo")

	return set, nil
}

func (tiingo *Tiingo) get(ctx context.Context, path string, params map[string]string, result any) error {
	logger := zerolog.Ctx(ctx)

	if err := tiingo.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := tiingo.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+tiingo.apiKey).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		logger.Error().Err(err).Str("Path", path).Msg("resty returned an error when querying tiingo")
		return err
	}

	if err := checkStatus(resp.StatusCode(), path); err != nil {
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Path", path).Msg("tiingo returned an invalid HTTP response")
		return err
	}

	return nil
}
