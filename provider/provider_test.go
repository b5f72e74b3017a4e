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
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Provider registry", func() {
	It("lists providers alphabetically", func() {
		Expect(Names()).To(Equal([]string{"alphavantage", "csv", "sharadar", "tiingo"}))
	})

	It("looks up providers case-insensitively", func() {
		prov, err := New("AlphaVantage")
		Expect(err).NotTo(HaveOccurred())
		Expect(prov.Name()).To(Equal("alphavantage"))
	})

	It("fails for unknown providers", func() {
		_, err := New("bloomberg")
		Expect(err).To(MatchError(ErrProviderNotFound))
	})

	It("describes the configuration of every provider", func() {
		for _, name := range Names() {
			prov, err := New(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(prov.Name()).To(Equal(name))
			Expect(prov.Description()).NotTo(BeEmpty())
			Expect(prov.ConfigDescription()).NotTo(BeEmpty())
		}
	})

	Describe("Merge", func() {
		It("only copies prices", func() {
			set := &data.StatementSet{
				Income: []*data.IncomeStatement{{PeriodType: fiscal.Annual}},
			}
			other := &data.StatementSet{
				Income: []*data.IncomeStatement{{PeriodType: fiscal.Quarterly}},
				Prices: []*data.DailyPrice{{Close: 10}, {Close: 11}},
			}

			Merge(set, other)
			Expect(set.Income).To(HaveLen(1))
			Expect(set.Income[0].PeriodType).To(Equal(fiscal.Annual))
			Expect(set.Prices).To(HaveLen(2))
		})

		It("ignores nil sets", func() {
			set := &data.StatementSet{}
			Merge(set, nil)
			Merge(nil, set)
			Expect(set.Len()).To(Equal(0))
		})
	})

	DescribeTable("checkStatus",
		func(code int, ok bool) {
			err := checkStatus(code, "http://example.com")
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(ErrInvalidStatusCode))
			}
		},
		Entry("ok", 200, true),
		Entry("no content", 204, true),
		Entry("redirect", 301, false),
		Entry("not found", 404, false),
		Entry("server error", 500, false),
	)
})
