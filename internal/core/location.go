package core

import (
	"regexp"
	"sort"
	"strings"
)

// Zone classifies a location signal relative to the Eastern time zone
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneEastern
	ZoneOther
)

func (z Zone) String() string {
	switch z {
	case ZoneEastern:
		return "eastern"
	case ZoneOther:
		return "other"
	default:
		return "unknown"
	}
}

// easternStates maps postal codes to names for states on Eastern time
var easternStates = map[string]string{
	"ME": "Maine",
	"NH": "New Hampshire",
	"VT": "Vermont",
	"MA": "Massachusetts",
	"RI": "Rhode Island",
	"CT": "Connecticut",
	"NY": "New York",
	"NJ": "New Jersey",
	"PA": "Pennsylvania",
	"DE": "Delaware",
	"MD": "Maryland",
	"DC": "District of Columbia",
	"VA": "Virginia",
	"WV": "West Virginia",
	"NC": "North Carolina",
	"SC": "South Carolina",
	"GA": "Georgia",
	"FL": "Florida",
	"OH": "Ohio",
	"MI": "Michigan",
	"IN": "Indiana",
	"KY": "Kentucky",
}

var otherStates = map[string]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IA": "Iowa",
	"KS": "Kansas",
	"LA": "Louisiana",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NM": "New Mexico",
	"ND": "North Dakota",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"SD": "South Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"WA": "Washington",
	"WI": "Wisconsin",
	"WY": "Wyoming",
}

// cities maps unambiguous city names to their canonical "City, ST" form
var cities = map[string]string{
	"New York City":  "New York, NY",
	"NYC":            "New York, NY",
	"Manhattan":      "New York, NY",
	"Brooklyn":       "New York, NY",
	"Boston":         "Boston, MA",
	"Philadelphia":   "Philadelphia, PA",
	"Pittsburgh":     "Pittsburgh, PA",
	"Baltimore":      "Baltimore, MD",
	"Washington DC":  "Washington, DC",
	"Richmond":       "Richmond, VA",
	"Raleigh":        "Raleigh, NC",
	"Charlotte":      "Charlotte, NC",
	"Atlanta":        "Atlanta, GA",
	"Miami":          "Miami, FL",
	"Orlando":        "Orlando, FL",
	"Tampa":          "Tampa, FL",
	"Jacksonville":   "Jacksonville, FL",
	"Hartford":       "Hartford, CT",
	"Stamford":       "Stamford, CT",
	"Providence":     "Providence, RI",
	"Newark":         "Newark, NJ",
	"Princeton":      "Princeton, NJ",
	"Cleveland":      "Cleveland, OH",
	"Cincinnati":     "Cincinnati, OH",
	"Detroit":        "Detroit, MI",
	"Indianapolis":   "Indianapolis, IN",
	"Louisville":     "Louisville, KY",
	"Buffalo":        "Buffalo, NY",
	"Chicago":        "Chicago, IL",
	"Los Angeles":    "Los Angeles, CA",
	"San Francisco":  "San Francisco, CA",
	"San Diego":      "San Diego, CA",
	"Seattle":        "Seattle, WA",
	"Denver":         "Denver, CO",
	"Dallas":         "Dallas, TX",
	"Houston":        "Houston, TX",
	"Austin":         "Austin, TX",
	"Phoenix":        "Phoenix, AZ",
	"Minneapolis":    "Minneapolis, MN",
	"Nashville":      "Nashville, TN",
	"Salt Lake City": "Salt Lake City, UT",
	"Las Vegas":      "Las Vegas, NV",
}

var cityStatePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?),\s*([A-Z]{2})\b`)

type namedPlace struct {
	name      string
	canonical string
	zone      Zone
	pattern   *regexp.Regexp
}

// places holds state and city names, longest first so that "West Virginia"
// wins over "Virginia" and "Washington DC" over "Washington".
var places = buildPlaces()

func buildPlaces() []namedPlace {
	var out []namedPlace
	add := func(name, canonical string, zone Zone) {
		out = append(out, namedPlace{
			name:      name,
			canonical: canonical,
			zone:      zone,
			pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}
	for _, name := range easternStates {
		add(name, name, ZoneEastern)
	}
	for _, name := range otherStates {
		add(name, name, ZoneOther)
	}
	for name, canonical := range cities {
		add(name, canonical, zoneOf(canonical[len(canonical)-2:]))
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].name) != len(out[j].name) {
			return len(out[i].name) > len(out[j].name)
		}
		return out[i].name < out[j].name
	})
	return out
}

func zoneOf(code string) Zone {
	if _, ok := easternStates[code]; ok {
		return ZoneEastern
	}
	if _, ok := otherStates[code]; ok {
		return ZoneOther
	}
	return ZoneUnknown
}

// ClassifyLocation finds location signals in text. Any Eastern signal wins and is
// returned in canonical form; otherwise the first non-Eastern signal is returned.
func ClassifyLocation(text string) (Zone, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ZoneUnknown, ""
	}

	var other string
	for _, m := range cityStatePattern.FindAllStringSubmatch(text, -1) {
		switch zoneOf(m[2]) {
		case ZoneEastern:
			return ZoneEastern, m[1] + ", " + m[2]
		case ZoneOther:
			if other == "" {
				other = m[1] + ", " + m[2]
			}
		}
	}

	// Matched spans are blanked so "Virginia" is not found again inside "West Virginia"
	masked := []byte(text)
	for _, place := range places {
		locs := place.pattern.FindAllIndex(masked, -1)
		if len(locs) == 0 {
			continue
		}
		if place.zone == ZoneEastern {
			return ZoneEastern, place.canonical
		}
		if other == "" && place.zone == ZoneOther {
			other = place.canonical
		}
		for _, loc := range locs {
			for i := loc[0]; i < loc[1]; i++ {
				masked[i] = ' '
			}
		}
	}

	if other != "" {
		return ZoneOther, other
	}
	return ZoneUnknown, ""
}
