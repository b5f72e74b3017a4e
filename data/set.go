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
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatementSet is everything a provider returns for a single company
type StatementSet struct {
	Company  *Company
	Income   []*IncomeStatement
	Balance  []*BalanceSheet
	CashFlow []*CashFlowStatement
	Prices   []*DailyPrice
}

// SetCompanyID stamps id on the company and every record in the set
func (set *StatementSet) SetCompanyID(id uuid.UUID) {
	if set.Company != nil {
		set.Company.ID = id
	}

	for _, inc := range set.Income {
		inc.CompanyID = id
	}

	for _, bal := range set.Balance {
		bal.CompanyID = id
	}

	for _, cf := range set.CashFlow {
		cf.CompanyID = id
	}

	for _, price := range set.Prices {
		price.CompanyID = id
	}
}

// Len returns the total number of records in the set
func (set *StatementSet) Len() int {
	return len(set.Income) + len(set.Balance) + len(set.CashFlow) + len(set.Prices)
}

func (set *StatementSet) MarshalZerologObject(e *zerolog.Event) {
	if set.Company != nil {
		e.Str("Ticker", set.Company.Ticker)
	}
	e.Int("NumIncome", len(set.Income))
	e.Int("NumBalance", len(set.Balance))
	e.Int("NumCashFlow", len(set.CashFlow))
	e.Int("NumPrices", len(set.Prices))
}
