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
	"os"
	"path/filepath"

	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CSV", func() {
	var (
		dir string
		ctx context.Context
	)

	write := func(name, contents string) {
		Expect(os.WriteFile(filepath.Join(dir, "ACME", name), []byte(contents), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dir, "ACME"), 0o755)).To(Succeed())

		write("company.csv", "name,exchange,composite_figi,currency,fiscal_year_end_month\nAcme Corp,NYSE,BBG000000001,GBP,Mar\n")
		write("income.csv", "period_end_date,period_type,total_revenue,gross_profit,net_income,basic_eps,shares_outstanding\n"+
			"2023-03-31,annual,4000,1600,500,5.00,100\n"+
			"2023-06-30,quarterly,1100,440,,1.25,100\n"+
			"2023-09-30,monthly,1200,480,150,1.50,100\n")
		write("balance.csv", "period_end_date,period_type,total_debt,cash_and_equivalents,net_debt\n"+
			"2023-03-31,annual,500,200,\n"+
			"2023-06-30,quarterly,500,200,250\n")
	})

	It("reads the files present for a ticker", func() {
		set, err := NewCSV(dir).Fetch(ctx, "acme")
		Expect(err).NotTo(HaveOccurred())

		Expect(set.Company.Name).To(Equal("Acme Corp"))
		Expect(set.Company.CompositeFigi).To(Equal("BBG000000001"))
		Expect(set.Company.CurrencyCode()).To(Equal("GBP"))
		Expect(set.Company.FiscalYearEnd()).To(Equal(3))

		Expect(set.Income).To(HaveLen(2))
		Expect(set.Balance).To(HaveLen(2))
		Expect(set.CashFlow).To(BeEmpty())
		Expect(set.Prices).To(BeEmpty())
	})

	It("parses amounts and leaves empty cells null", func() {
		set, err := NewCSV(dir).Fetch(ctx, "ACME")
		Expect(err).NotTo(HaveOccurred())

		Expect(set.Income[0].PeriodType).To(Equal(fiscal.Annual))
		Expect(*set.Income[0].Value(data.Revenue)).To(BeNumerically("==", 4000))
		Expect(*set.Income[0].Value(data.SharesOutstanding)).To(BeNumerically("==", 100))
		Expect(set.Income[1].Value(data.NetIncome)).To(BeNil())
	})

	It("derives net debt when the column is empty", func() {
		set, err := NewCSV(dir).Fetch(ctx, "ACME")
		Expect(err).NotTo(HaveOccurred())

		Expect(*set.Balance[0].Value(data.NetDebt)).To(BeNumerically("==", 300))
		Expect(*set.Balance[1].Value(data.NetDebt)).To(BeNumerically("==", 250))
	})

	It("reads prices", func() {
		write("prices.csv", "date,open,high,low,close,volume\n2023-06-30,10,12,9,11,1000\n")

		set, err := NewCSV(dir).Fetch(ctx, "ACME")
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Prices).To(HaveLen(1))
		Expect(set.Prices[0].Date).To(Equal(fiscal.Date(2023, 6, 30)))
		Expect(set.Prices[0].Close).To(BeNumerically("==", 11))
	})

	It("fails when nothing is stored for the ticker", func() {
		_, err := NewCSV(dir).Fetch(ctx, "NONE")
		Expect(err).To(MatchError(ErrNoData))
	})

	It("requires a directory", func() {
		_, err := NewCSV("").Fetch(ctx, "ACME")
		Expect(err).To(MatchError(ErrMissingDirectory))
	})
})
