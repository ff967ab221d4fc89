// Package match finds schema fields that resemble a misspelled key.
//
// Keys are normalized first (case folded, separators removed, CamelCase
// joined), so "requirePaths", "Require-Paths" and "require_paths" compare
// equal. Similarity is a normalized Levenshtein score in [0, 1].
//
// Key functions:
//   - NormalizeIdent: normalizes keys for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Rank: orders schema fields by similarity to a key
//   - Suggest: the "did you mean" short list for a key
package match
