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
	"context"
	"sync"
	"time"

	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
)

// LoadFunc returns the statements needed to build the report of company.
// limit is the number of statements of each kind to load, counting back from
// the most recent one dated on or before asOf.
type LoadFunc func(ctx context.Context, company *data.Company, periodType fiscal.PeriodType, limit int, asOf time.Time) (align.Statements, error)

// Result is the outcome of building one company's report
type Result struct {
	Company *data.Company
	Report  *Report
	Err     error
}

// BatchSummary counts the outcome of a batch run
type BatchSummary struct {
	Succeeded int
	Failed    int
}

// Batch builds the report of every company using a fixed pool of workers.
// Results are returned in the same order as companies. A canceled context
// marks the companies that were not processed as failed.
func Batch(ctx context.Context, companies []*data.Company, workers int, load LoadFunc, opts Options) ([]*Result, BatchSummary) {
	if workers < 1 {
		workers = 1
	}

	results := make([]*Result, len(companies))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for ii := 0; ii < workers; ii++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = buildOne(ctx, companies[idx], load, opts)
			}
		}()
	}

dispatch:
	for idx := range companies {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}

	close(jobs)
	wg.Wait()

	summary := BatchSummary{}
	for idx, result := range results {
		if result == nil {
			result = &Result{Company: companies[idx], Err: ctx.Err()}
			results[idx] = result
		}

		if result.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	return results, summary
}

func buildOne(ctx context.Context, company *data.Company, load LoadFunc, opts Options) *Result {
	result := &Result{Company: company}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	statements, err := load(ctx, company, opts.periodType(), opts.FetchLimit(), opts.AsOfDate())
	if err != nil {
		result.Err = err
		return result
	}

	result.Report, result.Err = Build(company, statements, opts)
	return result
}
