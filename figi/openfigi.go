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

// Package figi maps tickers to composite FIGIs using the OpenFIGI API
package figi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/pkginfo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	openFigiURL = "https://api.openfigi.com"

	// jobs per mapping request with and without an API key
	keyedBatchSize     = 100
	anonymousBatchSize = 10
)

var (
	ErrMappingFailed = errors.New("openfigi mapping request failed")
)

type MappingResponse struct {
	Data  []*OpenFigiAsset `json:"data"`
	Error string           `json:"error"`
}

type OpenFigiAsset struct {
	Figi                string `json:"figi"`
	SecurityType        string `json:"securityType"`
	MarketSector        string `json:"marketSector"`
	Ticker              string `json:"ticker"`
	Name                string `json:"name"`
	ExchangeCode        string `json:"exchCode"`
	ShareClassFIGI      string `json:"shareClassFIGI"`
	CompositeFIGI       string `json:"compositeFIGI"`
	SecurityType2       string `json:"securityType2"`
	SecurityDescription string `json:"securityDescription"`
}

type OpenFigiQuery struct {
	IdType                  string `json:"idType"`
	IdValue                 string `json:"idValue"`
	ExchangeCode            string `json:"exchCode"`
	MarketSectorDescription string `json:"marketSecDes"`
}

// Enricher fills in missing composite FIGIs on companies
type Enricher struct {
	apiKey    string
	batchSize int
	client    *resty.Client
	limiter   *rate.Limiter
	cache     *haxmap.Map[string, string]
}

// NewEnricher returns an enricher backed by the process wide cache
func NewEnricher(apiKey string) *Enricher {
	batchSize := keyedBatchSize
	limiter := rate.NewLimiter(rate.Every((time.Second*6)/25), 10)
	if apiKey == "" {
		batchSize = anonymousBatchSize
		limiter = rate.NewLimiter(rate.Every(time.Minute/25), 1)
	}

	return &Enricher{
		apiKey:    apiKey,
		batchSize: batchSize,
		client:    resty.New().SetHeader("User-Agent", pkginfo.UserAgent()).SetBaseURL(openFigiURL),
		limiter:   limiter,
		cache:     MapInstance(),
	}
}

// WithBaseURL points the enricher at a different API host
func (enricher *Enricher) WithBaseURL(url string) *Enricher {
	enricher.client.SetBaseURL(url)
	return enricher
}

// WithCache replaces the cache consulted before calling the API
func (enricher *Enricher) WithCache(cache *haxmap.Map[string, string]) *Enricher {
	enricher.cache = cache
	return enricher
}

// Enrich sets CompositeFigi on every company that does not have one. Cached
// tickers are resolved without calling the API. Companies that cannot be
// mapped are left unchanged.
func (enricher *Enricher) Enrich(ctx context.Context, companies ...*data.Company) error {
	logger := zerolog.Ctx(ctx)

	missing := make([]*data.Company, 0, len(companies))
	for _, company := range companies {
		if company == nil || company.CompositeFigi != "" {
			continue
		}

		if compositeFigi, ok := enricher.cache.Get(strings.ToUpper(company.Ticker)); ok && compositeFigi != "" {
			company.CompositeFigi = compositeFigi
			continue
		}

		missing = append(missing, company)
	}

	if len(missing) == 0 {
		return nil
	}

	tickers := make([]string, len(missing))
	for idx, company := range missing {
		tickers[idx] = company.Ticker
	}

	figis, err := enricher.Lookup(ctx, tickers)
	if err != nil {
		return err
	}

	for _, company := range missing {
		asset, ok := figis[strings.ToUpper(company.Ticker)]
		if !ok || asset.CompositeFIGI == "" {
			logger.Warn().Str("Ticker", company.Ticker).Msg("could not map ticker to a composite figi")
			continue
		}

		company.CompositeFigi = asset.CompositeFIGI
		enricher.cache.Set(strings.ToUpper(company.Ticker), asset.CompositeFIGI)
	}

	return nil
}

// Lookup maps tickers listed on US exchanges to their OpenFIGI records,
// keyed by upper-case ticker
func (enricher *Enricher) Lookup(ctx context.Context, tickers []string) (map[string]*OpenFigiAsset, error) {
	result := make(map[string]*OpenFigiAsset, len(tickers))
	query := make([]*OpenFigiQuery, 0, enricher.batchSize)

	flush := func() error {
		if len(query) == 0 {
			return nil
		}

		if err := enricher.limiter.Wait(ctx); err != nil {
			return err
		}

		mappingResponse, err := enricher.mapFigis(ctx, query)
		if err != nil {
			return err
		}

		// responses are positional; each entry answers the query job at the same index
		for idx, resp := range mappingResponse {
			if idx >= len(query) || len(resp.Data) == 0 {
				continue
			}

			result[strings.ToUpper(query[idx].IdValue)] = resp.Data[0]
		}

		query = make([]*OpenFigiQuery, 0, enricher.batchSize)
		return nil
	}

	for _, ticker := range tickers {
		query = append(query, &OpenFigiQuery{
			IdType:                  "TICKER",
			IdValue:                 strings.ToUpper(ticker),
			ExchangeCode:            "US",
			MarketSectorDescription: "Equity",
		})

		if len(query) == enricher.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return result, nil
}

func (enricher *Enricher) mapFigis(ctx context.Context, query []*OpenFigiQuery) ([]*MappingResponse, error) {
	logger := zerolog.Ctx(ctx)

	mappingResponse := make([]*MappingResponse, 0, len(query))
	req := enricher.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(query).
		SetResult(&mappingResponse)

	if enricher.apiKey != "" {
		req.SetHeader("X-OPENFIGI-APIKEY", enricher.apiKey)
	}

	resp, err := req.Post("/v3/mapping")

	logger.Debug().Int("NumTickers", len(query)).Msg("map tickers to FIGIs")

	if err != nil {
		logger.Error().Err(err).Msg("OpenFigi api called errored out")
		return nil, err
	}

	if resp.StatusCode() >= 400 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Body", string(resp.Body())).Msg("openfigi api call returned invalid status code")
		return nil, fmt.Errorf("%w: status code %d", ErrMappingFailed, resp.StatusCode())
	}

	return mappingResponse, nil
}
