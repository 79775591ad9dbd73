package listingquery

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// WithCoordinates returns only the listings that carry a map point. The
// map surface cannot place a listing without one.
func WithCoordinates(listings []ListingPayload) []ListingPayload {
	out := make([]ListingPayload, 0, len(listings))
	for _, l := range listings {
		if l.Latitude != nil && l.Longitude != nil {
			out = append(out, l)
		}
	}
	return out
}

// SortByDistance orders listings by distance from (lat, lng), closest
// first. Listings without coordinates sort last. The sort is stable so the
// incoming order breaks ties.
func SortByDistance(listings []ListingPayload, lat, lng float64) {
	sort.SliceStable(listings, func(i, j int) bool {
		return distanceOrInf(&listings[i], lat, lng) < distanceOrInf(&listings[j], lat, lng)
	})
}

func distanceOrInf(l *ListingPayload, lat, lng float64) float64 {
	if l.Latitude == nil || l.Longitude == nil {
		return math.Inf(1)
	}
	return Haversine(lat, lng, *l.Latitude, *l.Longitude)
}
