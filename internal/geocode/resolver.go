package geocode

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/gco-perigord/crieur-go/internal/models"
)

// Region scopes remote queries and ranks their results.
type Region struct {
	// Name is appended to every remote query ("Dordogne").
	Name string
	// PostalPrefix is the department's 2-digit postal prefix ("24").
	PostalPrefix string
}

// Searcher is the remote geocoding boundary, satisfied by *Client.
type Searcher interface {
	Search(ctx context.Context, query, region string) ([]Candidate, error)
}

// Resolver resolves location strings through an ordered tier chain,
// terminal on first success:
//
//  1. persistent cache (exact, apostrophe-normalized match)
//  2. manual correction table (never written back to the cache)
//  3. remote query, when the string carries a 5-digit code or is a bare
//     1-2 word commune name; results are cached
//  4. gazetteer substring match (bidirectional containment)
//  5. gazetteer lookup of an extracted commune name
//  6. remote query for the extracted commune name; results are cached
//
// The tier order is a documented policy choice: reordering the
// postal-code, bare-commune and gazetteer checks changes results for some
// inputs.
type Resolver struct {
	cache       *Cache
	corrections Corrections
	gazetteer   Gazetteer
	client      Searcher
	region      Region
	log         *slog.Logger
}

func NewResolver(cache *Cache, corrections Corrections, gazetteer Gazetteer, client Searcher, region Region, log *slog.Logger) *Resolver {
	return &Resolver{
		cache:       cache,
		corrections: corrections,
		gazetteer:   gazetteer,
		client:      client,
		region:      region,
		log:         log,
	}
}

var (
	anyDigitRe = regexp.MustCompile(`\d`)
	postal5Re  = regexp.MustCompile(`\d{5}`)
	curlyQuote = strings.NewReplacer("’", "'", "‘", "'")
)

// Resolve maps a location string to coordinates, or nil when the string is
// ungeocodable. A nil result is not an error: network failures and missing
// matches both degrade to it.
func (r *Resolver) Resolve(ctx context.Context, location string) *models.LocationResult {
	q := curlyQuote.Replace(strings.TrimSpace(location))
	if q == "" || strings.EqualFold(q, "non spécifié") {
		return nil
	}

	if e, ok := r.cache.Get(q); ok {
		r.log.Debug("location resolved", "query", q, "source", "cache")
		return &models.LocationResult{Latitude: e.Lat, Longitude: e.Lon, Address: q, Source: models.SourceCache}
	}

	if c, ok := r.corrections[q]; ok {
		r.log.Debug("location resolved", "query", q, "source", "correction")
		return &models.LocationResult{Latitude: c.Lat, Longitude: c.Lon, Address: c.Address, Source: models.SourceCorrection}
	}

	if postal5Re.MatchString(q) || bareCommune(q) {
		if res := r.queryAPI(ctx, q); res != nil {
			return res
		}
	}

	if name, lat, lon, ok := r.gazetteer.Lookup(q); ok {
		r.log.Debug("location resolved", "query", q, "source", "gazetteer", "commune", name)
		return &models.LocationResult{Latitude: lat, Longitude: lon, Address: name, Source: models.SourceGazetteer}
	}

	commune := ExtractCommune(q)
	if commune == "" {
		r.log.Debug("no commune candidate in location", "query", q)
		return nil
	}
	if name, lat, lon, ok := r.gazetteer.Lookup(commune); ok {
		r.log.Debug("location resolved", "query", q, "source", "gazetteer", "commune", name)
		return &models.LocationResult{Latitude: lat, Longitude: lon, Address: name, Source: models.SourceGazetteer}
	}

	return r.queryAPI(ctx, commune)
}

// bareCommune reports whether the query looks like a plain commune name:
// one or two words, no digits.
func bareCommune(q string) bool {
	return len(strings.Fields(q)) <= 2 && !anyDigitRe.MatchString(q)
}

// queryAPI issues one remote query, picks the best candidate for the
// region and writes the result back to the persistent cache.
func (r *Resolver) queryAPI(ctx context.Context, query string) *models.LocationResult {
	candidates, err := r.client.Search(ctx, query, r.region.Name)
	if err != nil {
		r.log.Warn("geocoding query failed", "query", query, "error", err)
		return nil
	}
	best := r.bestCandidate(candidates)
	if best == nil {
		r.log.Debug("no geocoding candidate", "query", query)
		return nil
	}

	lat, errLat := strconv.ParseFloat(best.Lat, 64)
	lon, errLon := strconv.ParseFloat(best.Lon, 64)
	if errLat != nil || errLon != nil {
		r.log.Warn("malformed coordinates in geocoding result", "query", query)
		return nil
	}

	r.cache.Add(query, lat, lon, string(models.SourceAPI))
	r.log.Debug("location resolved", "query", query, "source", "api")
	return &models.LocationResult{Latitude: lat, Longitude: lon, Address: best.DisplayName, Source: models.SourceAPI}
}

// bestCandidate prefers a result whose postal code starts with the
// region's prefix, then one whose display text mentions the region, then
// the first result.
func (r *Resolver) bestCandidate(candidates []Candidate) *Candidate {
	if len(candidates) == 0 {
		return nil
	}
	for i := range candidates {
		if strings.HasPrefix(candidates[i].Address.Postcode, r.region.PostalPrefix) {
			return &candidates[i]
		}
	}
	regionLower := strings.ToLower(r.region.Name)
	for i := range candidates {
		if strings.Contains(strings.ToLower(candidates[i].DisplayName), regionLower) {
			return &candidates[i]
		}
	}
	return &candidates[0]
}
