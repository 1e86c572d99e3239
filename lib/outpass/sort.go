// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package outpass

import "slices"

// SortForDisplay returns records with every emergency first. The sort is
// stable: records of the same class keep the service's order. The input
// is not modified.
func SortForDisplay(records []Request) []Request {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Request) int {
		switch {
		case a.Emergency() == b.Emergency():
			return 0
		case a.Emergency():
			return -1
		default:
			return 1
		}
	})
	return sorted
}

// CountByStatus tallies records per status.
func CountByStatus(records []Request) map[Status]int {
	counts := make(map[Status]int)
	for _, record := range records {
		counts[record.Status]++
	}
	return counts
}
