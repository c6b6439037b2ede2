// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package region expands human-readable location labels into ISO 3166-1
// alpha-2 country codes. Region labels expand to many codes, country labels
// to one.
package region

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var (
	europe = []string{
		"AD", "AL", "AT", "BA", "BE", "BG", "BY", "CH", "CY", "CZ", "DE", "DK", "EE", "ES",
		"FI", "FR", "GB", "GR", "HR", "HU", "IE", "IS", "IT", "LI", "LT", "LU", "LV", "MC",
		"MD", "ME", "MK", "MT", "NL", "NO", "PL", "PT", "RO", "RS", "SE", "SI", "SK", "SM",
		"UA", "VA", "XK",
	}
	asia = []string{
		"AF", "BD", "BN", "BT", "CN", "HK", "ID", "IN", "JP", "KG", "KH", "KP", "KR", "KZ",
		"LA", "LK", "MM", "MN", "MO", "MV", "MY", "NP", "PH", "PK", "SG", "TH", "TJ", "TL",
		"TM", "TW", "UZ", "VN",
	}
	middleEast = []string{
		"AE", "AM", "AZ", "BH", "EG", "GE", "IL", "IQ", "IR", "JO", "KW", "LB", "OM", "PS",
		"QA", "SA", "SY", "TR", "YE",
	}
	africa = []string{
		"AO", "BF", "BI", "BJ", "BW", "CD", "CF", "CG", "CI", "CM", "CV", "DJ", "DZ", "EG",
		"ER", "ET", "GA", "GH", "GM", "GN", "GQ", "GW", "KE", "KM", "LR", "LS", "LY", "MA",
		"MG", "ML", "MR", "MU", "MW", "MZ", "NA", "NE", "NG", "RW", "SC", "SD", "SL", "SN",
		"SO", "SS", "ST", "SZ", "TD", "TG", "TN", "TZ", "UG", "ZA", "ZM", "ZW",
	}
	latinAmerica = []string{
		"AR", "BO", "BR", "BZ", "CL", "CO", "CR", "CU", "DO", "EC", "GT", "HN", "HT", "JM",
		"MX", "NI", "PA", "PE", "PR", "PY", "SV", "TT", "UY", "VE",
	}
	northAmerica = []string{"BM", "CA", "GL", "MX", "US"}
	oceania      = []string{"AU", "FJ", "NZ", "PG", "SB", "TO", "VU", "WS"}
	nordics      = []string{"DK", "FI", "IS", "NO", "SE"}
)

// countries maps single-country labels to their code.
var countries = map[string]string{
	"United States":  "US",
	"USA":            "US",
	"United Kingdom": "GB",
	"UK":             "GB",
	"Canada":         "CA",
	"Australia":      "AU",
	"New Zealand":    "NZ",
	"Ireland":        "IE",
	"India":          "IN",
	"Pakistan":       "PK",
	"Bangladesh":     "BD",
	"Indonesia":      "ID",
	"Philippines":    "PH",
	"Vietnam":        "VN",
	"Thailand":       "TH",
	"Malaysia":       "MY",
	"Singapore":      "SG",
	"Japan":          "JP",
	"South Korea":    "KR",
	"China":          "CN",
	"Taiwan":         "TW",
	"Germany":        "DE",
	"France":         "FR",
	"Spain":          "ES",
	"Italy":          "IT",
	"Netherlands":    "NL",
	"Poland":         "PL",
	"Sweden":         "SE",
	"Ukraine":        "UA",
	"Russia":         "RU",
	"Turkey":         "TR",
	"Brazil":         "BR",
	"Mexico":         "MX",
	"Argentina":      "AR",
	"Colombia":       "CO",
	"Chile":          "CL",
	"Nigeria":        "NG",
	"South Africa":   "ZA",
	"Kenya":          "KE",
	"Egypt":          "EG",
	"Saudi Arabia":   "SA",
	"UAE":            "AE",
	"Israel":         "IL",
}

// regions maps multi-country labels to their codes. Worldwide is filled in
// by init with every code known to the package.
var regions = map[string][]string{
	"Europe":        europe,
	"Asia":          asia,
	"Middle East":   middleEast,
	"Africa":        africa,
	"Latin America": latinAmerica,
	"North America": northAmerica,
	"Oceania":       oceania,
	"Nordics":       nordics,
}

// WorldwideLabel selects every code in the dictionary.
const WorldwideLabel = "Worldwide"

var (
	// index maps a folded label to its codes.
	index map[string][]string

	// known holds every code that appears in the dictionary.
	known map[string]struct{}
)

func init() {
	known = make(map[string]struct{})
	for _, codes := range regions {
		for _, c := range codes {
			known[c] = struct{}{}
		}
	}
	for _, c := range countries {
		known[c] = struct{}{}
	}

	all := make([]string, 0, len(known))
	for c := range known {
		all = append(all, c)
	}
	sort.Strings(all)

	index = make(map[string][]string, len(regions)+len(countries)+1)
	for label, codes := range regions {
		index[key(label)] = codes
	}
	for label, code := range countries {
		index[key(label)] = []string{code}
	}
	index[key(WorldwideLabel)] = all
}

// key folds a label for lookup. A Caser is stateful, so each call gets its own.
func key(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

// Resolve expands labels into a deduplicated set of country codes. Matching
// ignores case and surrounding whitespace. A label that is itself a known
// two-letter code resolves to that code. Unknown labels contribute nothing.
func Resolve(labels []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, label := range labels {
		if codes, ok := index[key(label)]; ok {
			for _, c := range codes {
				out[c] = struct{}{}
			}
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(label))
		if _, ok := known[code]; ok {
			out[code] = struct{}{}
		}
	}
	return out
}

// Labels returns every dictionary label, regions first, each group sorted.
func Labels() []string {
	regionLabels := make([]string, 0, len(regions)+1)
	for label := range regions {
		regionLabels = append(regionLabels, label)
	}
	regionLabels = append(regionLabels, WorldwideLabel)
	sort.Strings(regionLabels)

	countryLabels := make([]string, 0, len(countries))
	for label := range countries {
		countryLabels = append(countryLabels, label)
	}
	sort.Strings(countryLabels)

	return append(regionLabels, countryLabels...)
}

// IsRegion reports whether label names a multi-country region.
func IsRegion(label string) bool {
	codes, ok := index[key(label)]
	return ok && len(codes) > 1
}

// Sorted returns the codes of a set in ascending order.
func Sorted(codes map[string]struct{}) []string {
	out := make([]string, 0, len(codes))
	for c := range codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
