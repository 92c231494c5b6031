// Package location maps free-text city and station input to canonical
// station names.  Callers of the booking engine resolve locations before
// searching so that station filters are exact-match; an empty resolution
// means "unknown location", not "no filter".
package location

import (
	"sort"
	"strings"
)

// cityStations maps lowercase city keys to their canonical station names.
// London is served by several termini; most cities have a single primary
// station.
var cityStations = map[string][]string{
	"london": {
		"London Euston",
		"London King's Cross",
		"London Paddington",
		"London Victoria",
		"London St Pancras",
		"London Marylebone",
		"London Waterloo",
	},
	"manchester": {"Manchester Piccadilly"},
	"birmingham": {"Birmingham New Street"},
	"edinburgh":  {"Edinburgh Waverley"},
	"glasgow":    {"Glasgow Central"},
	"liverpool":  {"Liverpool Lime Street"},
	"leeds":      {"Leeds"},
	"cardiff":    {"Cardiff Central"},
	"bristol":    {"Bristol Temple Meads"},
	"newcastle":  {"Newcastle Central"},
	"sheffield":  {"Sheffield"},
	"york":       {"York"},
	"oxford":     {"Oxford"},
	"cambridge":  {"Cambridge"},
	"brighton":   {"Brighton"},
	"bath":       {"Bath Spa"},
	"exeter":     {"Exeter St Davids"},
	"portsmouth": {"Portsmouth Harbour"},
	"canterbury": {"Canterbury West"},
	"dover":      {"Dover Priory"},
	"hull":       {"Hull"},
	"coventry":   {"Coventry"},
	"leicester":  {"Leicester"},
	"nottingham": {"Nottingham"},
	"derby":      {"Derby"},
	"aberdeen":   {"Aberdeen"},
	"stirling":   {"Stirling"},
	"swansea":    {"Swansea"},
	"warwick":    {"Warwick"},
	"gatwick":    {"Gatwick Airport"},
	"airport":    {"Gatwick Airport"},
}

// stationCity is the reverse index from lowercase station name to the
// canonical spelling and owning city.
var stationCity = map[string]struct {
	Canonical string
	City      string
}{}

func init() {
	for city, stations := range cityStations {
		for _, s := range stations {
			stationCity[strings.ToLower(s)] = struct {
				Canonical string
				City      string
			}{Canonical: s, City: city}
		}
	}
}

// Resolver answers "which concrete stations does this free-text location
// mean".  It is a pure in-memory lookup with no dependencies.
type Resolver struct{}

// NewResolver returns a Resolver over the built-in UK city/station map.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns the canonical station names for a free-text location.
// A city name yields all of its stations; an exact station name (any case)
// yields that single station.  Unknown input yields an empty slice.
func (r *Resolver) Resolve(input string) []string {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return nil
	}
	if stations, ok := cityStations[key]; ok {
		out := make([]string, len(stations))
		copy(out, stations)
		return out
	}
	if st, ok := stationCity[key]; ok {
		return []string{st.Canonical}
	}
	return nil
}

// CityOf returns the city key a canonical station belongs to, or "" when
// the station is unknown.
func (r *Resolver) CityOf(station string) string {
	if st, ok := stationCity[strings.ToLower(strings.TrimSpace(station))]; ok {
		return st.City
	}
	return ""
}

// Suggestion pairs a station with its city for autocomplete-style output.
type Suggestion struct {
	Station string `json:"station"`
	City    string `json:"city"`
}

// Suggest returns stations whose name or city contains the query, ordered
// alphabetically by station name.  An empty query returns nothing.
func (r *Resolver) Suggest(query string) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Suggestion
	for key, st := range stationCity {
		if strings.Contains(key, q) || strings.Contains(st.City, q) {
			out = append(out, Suggestion{Station: st.Canonical, City: st.City})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Station < out[j].Station })
	return out
}
