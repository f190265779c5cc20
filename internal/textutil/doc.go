// Package textutil canonicalizes display titles for comparison.
//
// Normalize strips trademark glyphs, smart quotes and punctuation, folds
// nonspacing marks (diacritics) while keeping spacing vowel signs, and lowercases so that storefront titles and window titles can be
// compared without caring about typography. Words splits a normalized string
// into the significant tokens used by partial-match scoring.
package textutil
