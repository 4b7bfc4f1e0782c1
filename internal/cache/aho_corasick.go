// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package cache

import (
	"sync"
	"unicode/utf8"
)

// AhoCorasick finds every occurrence of many patterns in one pass over the
// text, in O(n + m + z) time (text length, total pattern length, matches).
//
// Matching is exact on runes. Callers normalize both patterns and text the
// same way beforehand (the location resolver folds both with textnorm.Fold),
// and match offsets refer to the text exactly as passed to Search.
//
//	ac := cache.NewAhoCorasick[string]()
//	ac.AddPattern("huế", "site-1")
//	ac.AddPattern("thừa thiên huế", "site-2")
//	ac.Build()
//	ac.Search("quê ở thừa thiên huế")
type AhoCorasick[T any] struct {
	mu       sync.RWMutex
	root     *acNode
	patterns []Pattern[T]
	built    bool
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indices of patterns ending here, including via failure links
}

// Pattern is a search pattern with associated data.
type Pattern[T any] struct {
	Text string
	Data T
}

// Match is one occurrence of a pattern. Start and End are byte offsets into
// the searched text, so text[Start:End] == Pattern.
type Match[T any] struct {
	Index   int // position of the pattern in insertion order
	Pattern string
	Data    T
	Start   int
	End     int
}

// NewAhoCorasick creates an empty automaton.
func NewAhoCorasick[T any]() *AhoCorasick[T] {
	return &AhoCorasick[T]{root: newACNode()}
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// AddPattern adds a pattern. Empty patterns are ignored. Adding after Build
// marks the automaton for rebuild.
func (ac *AhoCorasick[T]) AddPattern(pattern string, data T) {
	if pattern == "" {
		return
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.built = false
	ac.patterns = append(ac.patterns, Pattern[T]{Text: pattern, Data: data})
}

// Build constructs the trie and failure links.
func (ac *AhoCorasick[T]) Build() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.built {
		return
	}

	ac.root = newACNode()
	for i, p := range ac.patterns {
		ac.insertPattern(i, p.Text)
	}
	ac.buildFailureLinks()
	ac.built = true
}

func (ac *AhoCorasick[T]) insertPattern(index int, pattern string) {
	node := ac.root
	for _, ch := range pattern {
		next := node.children[ch]
		if next == nil {
			next = newACNode()
			node.children[ch] = next
		}
		node = next
	}
	node.output = append(node.output, index)
}

// buildFailureLinks runs a BFS from the root. Each node's failure link points
// at the longest proper suffix that is also a trie path.
func (ac *AhoCorasick[T]) buildFailureLinks() {
	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}

			if fail == nil {
				child.failure = ac.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// Search returns every match, ordered by end offset.
func (ac *AhoCorasick[T]) Search(text string) []Match[T] {
	var matches []Match[T]
	ac.scan(text, func(m Match[T]) bool {
		matches = append(matches, m)
		return true
	})
	return matches
}

// SearchFirst returns the match that ends earliest in the text.
func (ac *AhoCorasick[T]) SearchFirst(text string) (Match[T], bool) {
	var (
		first Match[T]
		found bool
	)
	ac.scan(text, func(m Match[T]) bool {
		first, found = m, true
		return false
	})
	return first, found
}

// Contains reports whether any pattern occurs in text.
func (ac *AhoCorasick[T]) Contains(text string) bool {
	_, found := ac.SearchFirst(text)
	return found
}

// PatternCount returns the number of patterns added.
func (ac *AhoCorasick[T]) PatternCount() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return len(ac.patterns)
}

// scan walks the automaton over text and calls yield for each match until
// yield returns false.
func (ac *AhoCorasick[T]) scan(text string, yield func(Match[T]) bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return
	}

	node := ac.root
	for i := 0; i < len(text); {
		ch, size := utf8.DecodeRuneInString(text[i:])
		end := i + size
		i = end

		for node != ac.root && node.children[ch] == nil {
			node = node.failure
		}
		if next := node.children[ch]; next != nil {
			node = next
		}

		if len(node.output) == 0 {
			continue
		}

		for _, idx := range node.output {
			p := ac.patterns[idx]
			m := Match[T]{
				Index:   idx,
				Pattern: p.Text,
				Data:    p.Data,
				Start:   end - len(p.Text),
				End:     end,
			}
			if !yield(m) {
				return
			}
		}
	}
}
