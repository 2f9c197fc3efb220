package config

import (
	"fmt"
	"regexp"
	"strings"
)

// stateNames maps canonical postal codes to full state names. Search URLs
// use the lower-cased code.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut",
	"DE": "Delaware", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan",
	"MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota",
	"OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania",
	"RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota",
	"TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// Misspellings seen in real search lists, accepted for convenience.
var stateMisspellings = map[string]string{
	"massachusets": "MA",
	"minesota":     "MN",
	"okakhoma":     "OK",
}

var nonLetter = regexp.MustCompile(`[^a-z]`)

var stateAliases = buildStateAliases()

func buildStateAliases() map[string]string {
	aliases := make(map[string]string, len(stateNames)*2+len(stateMisspellings))
	for code, name := range stateNames {
		aliases[normalizeStateToken(code)] = code
		aliases[normalizeStateToken(name)] = code
	}
	for miss, code := range stateMisspellings {
		aliases[miss] = code
	}
	return aliases
}

func normalizeStateToken(s string) string {
	return nonLetter.ReplaceAllString(strings.ToLower(s), "")
}

// ResolveStates resolves user-declared tokens (postal codes, full names or
// known misspellings, case-insensitive) to canonical codes, preserving order
// and dropping repeats. Any unresolved token is a configuration error; the
// error names every offender so the whole list can be fixed in one pass.
func ResolveStates(tokens []string) ([]string, error) {
	var codes []string
	var unknown []string
	seen := make(map[string]bool)

	for _, raw := range tokens {
		code, ok := stateAliases[normalizeStateToken(raw)]
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf(
			"unknown state(s): %s. Use a 2-letter code (e.g., %q) or a full state name (e.g., %q)",
			strings.Join(unknown, ", "), "PA", "Pennsylvania")
	}
	return codes, nil
}

// StateName returns the full name for a canonical code, or the code itself
// when unknown.
func StateName(code string) string {
	if name, ok := stateNames[code]; ok {
		return name
	}
	return code
}
