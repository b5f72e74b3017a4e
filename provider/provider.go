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
	"sort"
	"strings"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/spf13/viper"
)

var (
	ErrInvalidStatusCode = errors.New("invalid HTTP status code")
	ErrProviderNotFound  = errors.New("provider not found")
	ErrMissingAPIKey     = errors.New("missing API key")
	ErrNoData            = errors.New("provider returned no data")
	ErrAPI               = errors.New("provider API error")
)

// Provider fetches the statements and prices of a single company from a
// data vendor
type Provider interface {
	Name() string
	Description() string

	// ConfigDescription maps each configuration key the provider reads to a
	// human readable description
	ConfigDescription() map[string]string

	Fetch(ctx context.Context, ticker string) (*data.StatementSet, error)
}

// Map holds a constructor for every known provider keyed by name
var Map = map[string]func() Provider{
	"alphavantage": func() Provider {
		return NewAlphaVantage(viper.GetString("alphavantage.apikey"), viper.GetInt("alphavantage.rate_limit"))
	},
	"tiingo": func() Provider {
		return NewTiingo(viper.GetString("tiingo.apikey"))
	},
	"sharadar": func() Provider {
		return NewSharadar(viper.GetString("nasdaq.apikey"))
	},
	"csv": func() Provider {
		return NewCSV(viper.GetString("csv.dir"))
	},
}

// New returns the provider registered under name
func New(name string) (Provider, error) {
	constructor, ok := Map[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}

	return constructor(), nil
}

// Names returns the registered provider names in alphabetical order
func Names() []string {
	names := make([]string, 0, len(Map))
	for name := range Map {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Merge copies the prices of other into set; every other record in other
// is ignored
func Merge(set *data.StatementSet, other *data.StatementSet) {
	if set == nil || other == nil {
		return
	}

	set.Prices = append(set.Prices, other.Prices...)
}

func checkStatus(statusCode int, url string) error {
	if statusCode >= 300 {
		return fmt.Errorf("%w: %d (%s)", ErrInvalidStatusCode, statusCode, url)
	}

	return nil
}
