package employee

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MarkerSampleSize is the number of employees listed on a map marker.
const MarkerSampleSize = 5

// minCityMatchRatio is the lowest similarity accepted when a city name is misspelled.
const minCityMatchRatio = 0.8

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Marker struct {
	City      string      `json:"city"`
	Position  Coordinates `json:"position"`
	Count     int         `json:"count"`
	Employees []Employee  `json:"employees"`
}

var cityCoordinates = map[string]Coordinates{
	"New York":     {40.7128, -74.0060},
	"Los Angeles":  {34.0522, -118.2437},
	"Chicago":      {41.8781, -87.6298},
	"Houston":      {29.7604, -95.3698},
	"Phoenix":      {33.4484, -112.0740},
	"Philadelphia": {39.9526, -75.1652},
	"San Antonio":  {29.4241, -98.4936},
	"San Diego":    {32.7157, -117.1611},
	"Dallas":       {32.7767, -96.7970},
	"San Jose":     {37.3382, -121.8863},
	"Austin":       {30.2672, -97.7431},
	"Jacksonville": {30.3322, -81.6557},
	"Mumbai":       {19.0760, 72.8777},
	"Delhi":        {28.7041, 77.1025},
	"Bangalore":    {12.9716, 77.5946},
	"Hyderabad":    {17.3850, 78.4867},
	"Chennai":      {13.0827, 80.2707},
	"Kolkata":      {22.5726, 88.3639},
	"Pune":         {18.5204, 73.8567},
	"Ahmedabad":    {23.0225, 72.5714},
}

// former or local names
var cityAliases = map[string]string{
	"nyc":       "New York",
	"bengaluru": "Bangalore",
	"new delhi": "Delhi",
	"bombay":    "Mumbai",
	"calcutta":  "Kolkata",
	"madras":    "Chennai",
	"poona":     "Pune",
}

// LocateCity resolves a city name to a known city and its coordinates.
// Exact (case-insensitive) names and aliases win; otherwise the closest known name is used
// when it is similar enough.
func LocateCity(city string) (string, Coordinates, bool) {
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return "", Coordinates{}, false
	}
	if name, ok := cityAliases[key]; ok {
		return name, cityCoordinates[name], true
	}

	var (
		best      string
		bestRatio float64
	)
	matcher := difflib.NewMatcher(nil, splitChars(key))
	for name := range cityCoordinates {
		lname := strings.ToLower(name)
		if lname == key {
			return name, cityCoordinates[name], true
		}
		matcher.SetSeq1(splitChars(lname))
		ratio := matcher.Ratio()
		if ratio > bestRatio || (ratio == bestRatio && name < best) {
			best, bestRatio = name, ratio
		}
	}
	if bestRatio < minCityMatchRatio {
		return "", Coordinates{}, false
	}
	return best, cityCoordinates[best], true
}

// Markers groups records per known city, in first-occurrence order.
// Records whose city cannot be located are left out.
func Markers(records []Employee) []Marker {
	markers := make([]Marker, 0)
	index := make(map[string]int)
	for _, emp := range records {
		name, pos, ok := LocateCity(emp.City)
		if !ok {
			continue
		}
		i, seen := index[name]
		if !seen {
			i = len(markers)
			index[name] = i
			markers = append(markers, Marker{City: name, Position: pos, Employees: make([]Employee, 0, MarkerSampleSize)})
		}
		markers[i].Count++
		if len(markers[i].Employees) < MarkerSampleSize {
			markers[i].Employees = append(markers[i].Employees, emp)
		}
	}
	return markers
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}
