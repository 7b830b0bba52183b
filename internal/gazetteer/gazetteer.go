// Package gazetteer resolves place names from extracted LOCATION entities to
// WGS84 coordinates using a static table of Cameroonian cities, regions, and
// neighboring countries.
package gazetteer

import (
	"log"
	"strings"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type place struct {
	name  string
	point Point
}

// The table keeps a fixed order: the substring fallback returns the first
// match, so iteration order is the tie-break. Accented and plain spellings
// are separate keys because entity text arrives in either form.
var places = []place{
	// Major cities
	{"yaoundé", Point{3.8480, 11.5021}},
	{"yaounde", Point{3.8480, 11.5021}},
	{"douala", Point{4.0511, 9.7679}},
	{"bamenda", Point{5.9631, 10.1591}},
	{"bafoussam", Point{5.4781, 10.4167}},
	{"garoua", Point{9.3265, 13.3971}},
	{"maroua", Point{10.5969, 14.3197}},
	{"ngaoundéré", Point{7.3167, 13.5833}},
	{"ngaoundere", Point{7.3167, 13.5833}},
	{"bertoua", Point{4.5777, 13.6836}},
	{"buea", Point{4.1559, 9.2928}},
	{"limbe", Point{4.0186, 9.2105}},
	{"kumba", Point{4.6371, 9.4469}},
	{"edea", Point{3.7969, 10.1350}},
	{"loum", Point{4.7181, 9.7336}},
	{"nkongsamba", Point{4.9547, 9.9386}},
	{"foumban", Point{5.7269, 10.9004}},
	{"tiko", Point{4.0719, 9.3606}},
	{"kribi", Point{2.9394, 9.9078}},
	{"sangmelima", Point{2.9294, 11.9981}},
	{"ebolowa", Point{2.9156, 11.1544}},
	{"mbalmayo", Point{3.5186, 11.5036}},
	{"akonolinga", Point{3.7731, 12.2506}},

	// Regions, mapped to their capitals
	{"adamawa", Point{7.3167, 13.5833}},
	{"centre", Point{3.8480, 11.5021}},
	{"east", Point{4.5777, 13.6836}},
	{"far north", Point{10.5969, 14.3197}},
	{"littoral", Point{4.0511, 9.7679}},
	{"north", Point{9.3265, 13.3971}},
	{"northwest", Point{5.9631, 10.1591}},
	{"north-west", Point{5.9631, 10.1591}},
	{"south", Point{2.9156, 11.1544}},
	{"southwest", Point{4.1559, 9.2928}},
	{"south-west", Point{4.1559, 9.2928}},
	{"west", Point{5.4781, 10.4167}},
	{"extrême-nord", Point{10.5969, 14.3197}},
	{"nord-ouest", Point{5.9631, 10.1591}},
	{"sud-ouest", Point{4.1559, 9.2928}},

	// Countries
	{"cameroon", Point{3.8480, 11.5021}},
	{"cameroun", Point{3.8480, 11.5021}},
	{"nigeria", Point{9.0820, 8.6753}},
	{"chad", Point{15.4542, 18.7322}},
	{"tchad", Point{15.4542, 18.7322}},
	{"central african republic", Point{6.6111, 20.9394}},
	{"equatorial guinea", Point{1.6508, 10.2679}},
	{"gabon", Point{-0.8037, 11.6094}},
}

var exact = func() map[string]Point {
	m := make(map[string]Point, len(places))
	for _, p := range places {
		m[p.name] = p.point
	}
	return m
}()

// Resolve looks up a location name: exact case-insensitive match first, then
// substring match in either direction against the table. A miss is not an
// error; the name is logged so the table can be extended later.
func Resolve(name string) (Point, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Point{}, false
	}

	if pt, ok := exact[key]; ok {
		return pt, true
	}

	for _, p := range places {
		if strings.Contains(key, p.name) || strings.Contains(p.name, key) {
			return p.point, true
		}
	}

	log.Printf("Unknown location for geocoding: %s", name)
	return Point{}, false
}
