package schema

import "strings"

// noise characters that separate or decorate name parts in the source
// spreadsheets; each becomes a plain space before whitespace collapsing.
var noiseReplacer = strings.NewReplacer(".", " ", "*", " ", ",", " ")

// NormalizeName canonicalizes a free-text client or subject name into its
// comparable key:
//  1. lowercase the full string
//  2. replace each '.', '*' and ',' with a single space
//  3. collapse whitespace runs into single spaces
//  4. trim leading and trailing whitespace
//
// The function is pure and total; a missing value normalizes to "". Two names
// denote the same identity exactly when their normalized forms are equal.
func NormalizeName(raw string) string {
	s := strings.ToLower(raw)
	s = noiseReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ReverseWords reverses the whitespace-separated tokens of a normalized name
// and rejoins them with single spaces. "rossi mario" becomes "mario rossi".
// The engine uses this as the second matching strategy, since the two source
// spreadsheets disagree on surname-first versus given-name-first order.
func ReverseWords(normalized string) string {
	words := strings.Fields(normalized)
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return strings.Join(words, " ")
}
