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
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", redact(myLibrary.DBUrl))); err != nil {
		return "", err
	}

	numCompanies, err := myLibrary.NumCompanies(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Companies Tracked: %d\n", numCompanies)); err != nil {
		return "", err
	}

	totalRecords, err := myLibrary.TotalRecords(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Total Records: %d\n\n", totalRecords)); err != nil {
		return "", err
	}

	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(fmt.Sprintf("Last Updated: %s\n\n", age(lastUpdated))); err != nil {
		return "", err
	}

	// Companies
	companies, err := myLibrary.Companies(ctx, false)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Companies\n\n"); err != nil {
		return "", err
	}

	for _, company := range companies {
		status := ""
		if !company.Active {
			status = " (inactive)"
		}

		if _, err := builder.WriteString(p.Sprintf("  * %s %s%s: FYE %s, %s, updated %s\n", company.Ticker, company.Name, status,
			fiscalYearEnd(company), company.CurrencyCode(), age(company.LastUpdated))); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}

// fiscalYearEnd abbreviates the month the company's fiscal year closes in
func fiscalYearEnd(company *data.Company) string {
	cal, err := company.Calendar()
	if err != nil {
		return fmt.Sprintf("invalid (%d)", company.FiscalYearEnd())
	}

	return cal.YearEndMonth().String()[:3]
}

func age(when time.Time) string {
	if when.IsZero() || when.Year() <= 1 {
		return "Never"
	}

	return fmt.Sprintf("%s (%s)", timeago.English.Format(when), when.Local().Format("01/02/2006"))
}

// redact hides the password in a connection string, whether it is part of
// the user info or passed as a query parameter
func redact(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return "(unparseable connection string)"
	}

	query := parsed.Query()
	if query.Has("password") {
		query.Set("password", "xxxxx")
		parsed.RawQuery = query.Encode()
	}

	return parsed.Redacted()
}
