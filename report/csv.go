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

package report

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

// Record is one report cell flattened for tabular export
type Record struct {
	Ticker    string `csv:"ticker"`
	Section   string `csv:"section"`
	Metric    string `csv:"metric"`
	Period    string `csv:"period"`
	EndDate   string `csv:"period_end_date"`
	Value     string `csv:"value"`
	Formatted string `csv:"formatted"`
	Unit      string `csv:"unit"`
	Quartile  string `csv:"heat_map_quartile"`
}

// Records flattens the report into one record per row and period
func (rpt *Report) Records() []*Record {
	records := make([]*Record, 0)
	for _, row := range rpt.Rows() {
		for idx, val := range row.Values {
			rec := &Record{
				Ticker:    rpt.Ticker,
				Section:   string(row.Section),
				Metric:    row.Name,
				Period:    val.Period,
				Formatted: val.Formatted,
				Unit:      val.Unit,
			}

			if idx < len(rpt.PeriodEndDates) {
				rec.EndDate = rpt.PeriodEndDates[idx].Format("2006-01-02")
			}

			if val.Value != nil {
				rec.Value = strconv.FormatFloat(*val.Value, 'f', -1, 64)
			}

			if val.HeatMapQuartile != nil {
				rec.Quartile = strconv.Itoa(*val.HeatMapQuartile)
			}

			records = append(records, rec)
		}
	}

	return records
}

// WriteCSV writes the flattened report with a header line
func (rpt *Report) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(rpt.Records(), w)
}
