// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster filters people and subject lists by a typed query the
// way fzf does: characters must appear in order, tighter and
// word-aligned matches score higher.
package roster

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var initScheme sync.Once

// Entry is one searchable row. Text is what the query is matched
// against; Key identifies the row to the caller.
type Entry struct {
	Key  string
	Text string
}

// Match is an entry that matched, with the matched rune positions of
// Text for highlighting.
type Match struct {
	Entry     Entry
	Score     int
	Positions []int
}

// Matcher holds the scratch memory reused across searches. A Matcher is
// not safe for concurrent use.
type Matcher struct {
	slab *util.Slab
}

// NewMatcher returns a Matcher with fzf's default scoring scheme.
func NewMatcher() *Matcher {
	initScheme.Do(func() {
		algo.Init("default")
	})
	return &Matcher{slab: util.MakeSlab(100*1024, 2048)}
}

// Search returns the entries matching query, best score first; ties keep
// input order. An empty or blank query matches every entry with score 0.
// Matching is case-insensitive unless the query contains an upper-case
// letter.
func (m *Matcher) Search(query string, entries []Entry) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		matches := make([]Match, len(entries))
		for index, entry := range entries {
			matches[index] = Match{Entry: entry}
		}
		return matches
	}

	caseSensitive := strings.IndexFunc(query, unicode.IsUpper) >= 0
	pattern := []rune(query)
	if !caseSensitive {
		pattern = []rune(strings.ToLower(query))
	}

	var matches []Match
	for _, entry := range entries {
		chars := util.ToChars([]byte(entry.Text))
		result, positions := algo.FuzzyMatchV2(caseSensitive, true, true, &chars, pattern, true, m.slab)
		if result.Start < 0 {
			continue
		}
		match := Match{Entry: entry, Score: result.Score}
		if positions != nil {
			match.Positions = slices.Clone(*positions)
			slices.Sort(match.Positions)
		}
		matches = append(matches, match)
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches
}

// Keys returns the keys of matches in order.
func Keys(matches []Match) []string {
	keys := make([]string, len(matches))
	for index, match := range matches {
		keys[index] = match.Entry.Key
	}
	return keys
}

// Join builds the searchable text of a row from its display columns,
// skipping empty ones.
func Join(columns ...string) string {
	nonEmpty := make([]string, 0, len(columns))
	for _, column := range columns {
		if column = strings.TrimSpace(column); column != "" {
			nonEmpty = append(nonEmpty, column)
		}
	}
	return strings.Join(nonEmpty, " ")
}
