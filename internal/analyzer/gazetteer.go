package analyzer

import (
	"sort"
	"strings"
)

// locationAliases maps canonical Dubai community names to the spellings and
// abbreviations people actually type. Matching is case-insensitive substring
// match over the aliases, longest alias first so "Palm Jumeirah" wins over
// "Jumeirah".
var locationAliases = map[string][]string{
	"Dubai Marina":             {"dubai marina", "marina"},
	"Downtown Dubai":           {"downtown dubai", "downtown"},
	"Palm Jumeirah":            {"palm jumeirah", "the palm"},
	"Jumeirah Beach Residence": {"jumeirah beach residence", "jbr"},
	"Business Bay":             {"business bay"},
	"Jumeirah Village Circle":  {"jumeirah village circle", "jvc"},
	"Jumeirah Lake Towers":     {"jumeirah lake towers", "jlt"},
	"Dubai Hills Estate":       {"dubai hills estate", "dubai hills"},
	"Arabian Ranches":          {"arabian ranches"},
	"DIFC":                     {"difc", "financial centre", "financial center"},
	"Dubai Creek Harbour":      {"dubai creek harbour", "creek harbour", "creek harbor"},
	"Dubai Silicon Oasis":      {"dubai silicon oasis", "silicon oasis"},
	"International City":       {"international city"},
	"Emirates Hills":           {"emirates hills"},
	"Meydan":                   {"meydan"},
	"Al Barsha":                {"al barsha", "barsha"},
	"Mirdif":                   {"mirdif"},
	"Deira":                    {"deira"},
	"Bur Dubai":                {"bur dubai"},
	"Jumeirah":                 {"jumeirah"},
}

type aliasEntry struct {
	alias     string
	canonical string
}

var aliasIndex []aliasEntry

func init() {
	for canonical, aliases := range locationAliases {
		for _, a := range aliases {
			aliasIndex = append(aliasIndex, aliasEntry{alias: a, canonical: canonical})
		}
	}
	// longest alias first; equal lengths ordered lexically for determinism
	sort.Slice(aliasIndex, func(i, j int) bool {
		if len(aliasIndex[i].alias) != len(aliasIndex[j].alias) {
			return len(aliasIndex[i].alias) > len(aliasIndex[j].alias)
		}
		return aliasIndex[i].alias < aliasIndex[j].alias
	})
}

// matchLocation returns the canonical community name mentioned in text.
func matchLocation(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, e := range aliasIndex {
		if strings.Contains(lower, e.alias) {
			return e.canonical, true
		}
	}
	return "", false
}
