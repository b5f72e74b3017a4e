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

package metrics

import "sort"

// Quartiles assigns each value a heat-map bucket from 1 (lowest) to 4
// (highest) relative to the other values in the slice. Boundaries are the
// sorted values at indices n/4, n/2 and 3n/4 (integer division) and a value
// equal to a boundary falls in the lower bucket. Nil values map to nil, and
// when fewer than two values are present every bucket is nil.
func Quartiles(values []*float64) []*int {
	buckets := make([]*int, len(values))

	sorted := make([]float64, 0, len(values))
	for _, val := range values {
		if finite(val) != nil {
			sorted = append(sorted, *val)
		}
	}

	if len(sorted) < 2 {
		return buckets
	}

	sort.Float64s(sorted)

	n := len(sorted)
	q1 := sorted[n/4]
	q2 := sorted[n/2]
	q3 := sorted[3*n/4]

	for idx, val := range values {
		if finite(val) == nil {
			continue
		}

		var bucket int
		switch {
		case *val <= q1:
			bucket = 1
		case *val <= q2:
			bucket = 2
		case *val <= q3:
			bucket = 3
		default:
			bucket = 4
		}

		buckets[idx] = &bucket
	}

	return buckets
}

// Favorability turns a quartile into a score from 1 (worst) to 4 (best).
// When inverted the lowest quartile scores best.
func Favorability(quartile *int, inverted bool) *int {
	if quartile == nil {
		return nil
	}

	score := *quartile
	if inverted {
		score = 5 - score
	}

	return &score
}

// RankRow annotates every value of a heat-map enabled row with its quartile
// among the row's own values
func RankRow(row *Row) {
	if row == nil || !row.HeatMapEnabled {
		return
	}

	for idx, bucket := range Quartiles(row.Floats()) {
		row.Values[idx].HeatMapQuartile = bucket
	}
}
