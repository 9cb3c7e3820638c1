// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// shortTokenLen is the longest ASCII pattern that must match on token
// boundaries ("gu" must not match "gucci").
const shortTokenLen = 3

type compiledRule struct {
	tag      string
	patterns []string
}

type compiledTaxonomy struct {
	name  string
	rules []compiledRule
}

// Match is one tag found by the tagger.
type Match struct {
	Taxonomy string
	Tag      string
}

// Tagger evaluates taxonomies against folded text. Safe for concurrent use.
type Tagger struct {
	taxonomies []compiledTaxonomy
}

// NewTagger compiles taxonomies, folding every pattern once.
func NewTagger(taxonomies []Taxonomy) *Tagger {
	t := &Tagger{taxonomies: make([]compiledTaxonomy, 0, len(taxonomies))}
	for _, tx := range taxonomies {
		ct := compiledTaxonomy{name: tx.Name}
		for _, r := range tx.Rules {
			cr := compiledRule{tag: r.Tag}
			for _, p := range r.Patterns {
				if p = Fold(p); p != "" {
					cr.patterns = append(cr.patterns, p)
				}
			}
			ct.rules = append(ct.rules, cr)
		}
		t.taxonomies = append(t.taxonomies, ct)
	}
	return t
}

// Matches returns taxonomy matches over text in taxonomy then rule order.
// A tag matched by several taxonomies is reported once, for the first.
func (t *Tagger) Matches(text string) []Match {
	folded := Fold(text)
	seen := make(map[string]struct{})
	var out []Match
	for _, tx := range t.taxonomies {
		for _, r := range tx.rules {
			if _, dup := seen[r.tag]; dup {
				continue
			}
			for _, p := range r.patterns {
				if containsPattern(folded, p) {
					seen[r.tag] = struct{}{}
					out = append(out, Match{Taxonomy: tx.name, Tag: r.tag})
					break
				}
			}
		}
	}
	return out
}

// Tags returns the matched tag names.
func (t *Tagger) Tags(text string) []string {
	matches := t.Matches(text)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Tag
	}
	return out
}

func containsPattern(text, pattern string) bool {
	if !isShortASCII(pattern) {
		return strings.Contains(text, pattern)
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], pattern)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(pattern)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isShortASCII(p string) bool {
	if len(p) > shortTokenLen {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}
