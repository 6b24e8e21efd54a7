package location

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"safeprofile/internal/util"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
)

const (
	geocodeCachePrefix     = "geocode:"
	geocodeCacheExpiration = 24 * time.Hour
)

var (
	// Matches the embedded marker appended by the location form,
	// e.g. "123 Main St (Coordinates: 51.5074, -0.1278)".
	coordPattern = regexp.MustCompile(`(?i)coordinates:\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)`)

	// Matches the marker and everything after it, well formed or not, so it
	// can be stripped before the text is sent to the geocoder.
	markerPattern = regexp.MustCompile(`(?i)\(?\s*coordinates:.*$`)
)

// Geocoder is the narrow slice of the geocoding client the resolver needs.
type Geocoder interface {
	Geocode(address string) (*geo.Location, error)
}

// Resolver turns free-text location descriptions into coordinates. Cheap path
// first: an embedded coordinate marker is parsed without any network call;
// only then does the text go to the external geocoder. Results are cached.
// Resolve never fails for ordinary "can't resolve" cases.
type Resolver struct {
	geocoder Geocoder
	cache    *util.RedisClient
	timeout  time.Duration
}

// NewResolver builds a resolver. cache may be nil; geocoder may be nil to
// disable the external fallback entirely.
func NewResolver(geocoder Geocoder, cache *util.RedisClient, timeout time.Duration) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		timeout:  timeout,
	}
}

// NewOpenStreetMapResolver builds a resolver backed by Nominatim.
func NewOpenStreetMapResolver(cache *util.RedisClient, timeout time.Duration) *Resolver {
	return NewResolver(openstreetmap.Geocoder(), cache, timeout)
}

// Resolve returns the coordinates for a location text, or ok=false when the
// text is empty, unparseable and ungeocodable. It never returns an error.
func (r *Resolver) Resolve(text string) (lat, lng float64, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0, false
	}

	if lat, lng, ok := ExtractCoordinates(text); ok {
		return lat, lng, true
	}

	// A malformed marker falls through to geocoding, with the marker text
	// stripped so it does not pollute the query.
	query := StripCoordinateMarker(text)
	if query == "" {
		return 0, 0, false
	}

	if lat, lng, ok := r.cachedResult(query); ok {
		return lat, lng, true
	}

	lat, lng, ok = r.geocode(query)
	if ok {
		r.cacheResult(query, lat, lng)
	}
	return lat, lng, ok
}

// ExtractCoordinates scans for an embedded coordinate marker and parses the
// lat/lng pair after it. Malformed content after the marker is a parse
// failure, not a crash.
func ExtractCoordinates(text string) (lat, lng float64, ok bool) {
	m := coordPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lng, errLng := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// StripCoordinateMarker removes a trailing coordinate marker, leaving the
// human-readable part of the location for geocoding.
func StripCoordinateMarker(text string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(text, ""))
}

func (r *Resolver) geocode(query string) (lat, lng float64, ok bool) {
	if r.geocoder == nil {
		return 0, 0, false
	}

	type result struct {
		loc *geo.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		loc, err := r.geocoder.Geocode(query)
		ch <- result{loc: loc, err: err}
	}()

	// The geocoding client rides the default HTTP client, so the bounded wait
	// lives here: a hung lookup must not stall document generation.
	select {
	case res := <-ch:
		if res.err != nil {
			log.Printf("Geocoding failed for %q: %v", query, res.err)
			return 0, 0, false
		}
		if res.loc == nil {
			log.Printf("No geocoding result for %q", query)
			return 0, 0, false
		}
		return res.loc.Lat, res.loc.Lng, true
	case <-time.After(r.timeout):
		log.Printf("Geocoding timed out after %v for %q", r.timeout, query)
		return 0, 0, false
	}
}

func (r *Resolver) cachedResult(query string) (lat, lng float64, ok bool) {
	if r.cache == nil {
		return 0, 0, false
	}
	val, err := r.cache.Get(geocodeCachePrefix + query)
	if err != nil {
		return 0, 0, false
	}
	parts := strings.SplitN(val, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(parts[0], 64)
	lng, errLng := strconv.ParseFloat(parts[1], 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (r *Resolver) cacheResult(query string, lat, lng float64) {
	if r.cache == nil {
		return
	}
	val := fmt.Sprintf("%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64))
	if err := r.cache.Set(geocodeCachePrefix+query, val, geocodeCacheExpiration); err != nil {
		log.Printf("Failed to cache geocoding result for %q: %v", query, err)
	}
}
