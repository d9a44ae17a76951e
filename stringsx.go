package main

import (
	"strings"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

// Small wrappers (aid readability + tests)
func stringsTrimSpace(value string) string           { return strings.TrimSpace(value) }
func stringsSplit(value string, sep string) []string { return strings.Split(value, sep) }

// stringsBeginsWith treats an empty prefix as no match.
func stringsBeginsWith(value string, prefix string) bool {
	matched, matchError := stringutil.BeginsWith(value, prefix)
	return matchError == nil && matched
}
