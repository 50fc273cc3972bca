package geocode

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gco-perigord/crieur-go/internal/models"
)

type fakeSearcher struct {
	calls      []string
	candidates []Candidate
	err        error
}

func (f *fakeSearcher) Search(ctx context.Context, query, region string) ([]Candidate, error) {
	f.calls = append(f.calls, query)
	return f.candidates, f.err
}

func newTestResolver(t *testing.T, searcher Searcher, corrections Corrections) (*Resolver, *Cache) {
	t.Helper()
	cache := OpenCache(filepath.Join(t.TempDir(), "cache.json"), discardLogger())
	r := NewResolver(cache, corrections, testGazetteer(t), searcher,
		Region{Name: "Dordogne", PostalPrefix: "24"}, discardLogger())
	return r, cache
}

func TestResolveCacheHit(t *testing.T) {
	searcher := &fakeSearcher{}
	r, cache := newTestResolver(t, searcher, nil)
	cache.Add("Salle des fêtes, 24100 Bergerac", 44.85, 0.48, "api")

	res := r.Resolve(context.Background(), "Salle des fêtes, 24100 Bergerac")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceCache, res.Source)
	assert.Equal(t, 44.85, res.Latitude)
	assert.Empty(t, searcher.calls, "cache hit must not reach the API")
}

func TestResolveCorrectionPrecedence(t *testing.T) {
	searcher := &fakeSearcher{}
	corrections := Corrections{
		"La grange du causse": {Lat: 45.01, Lon: 0.91, Address: "La Grange, 24620 Les Eyzies"},
	}
	r, cache := newTestResolver(t, searcher, corrections)

	res := r.Resolve(context.Background(), "La grange du causse")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceCorrection, res.Source)
	assert.Equal(t, "La Grange, 24620 Les Eyzies", res.Address)
	assert.Empty(t, searcher.calls)
	assert.Equal(t, 0, cache.Len(), "corrections are never written back to the cache")
}

func TestResolvePostalCodeQueriesAPI(t *testing.T) {
	searcher := &fakeSearcher{candidates: []Candidate{
		{Lat: "44.0", Lon: "0.1", DisplayName: "Bergerac, Gironde", Address: CandidateAddress{Postcode: "33000"}},
		{Lat: "44.85", Lon: "0.48", DisplayName: "Bergerac, Dordogne, France", Address: CandidateAddress{Postcode: "24100"}},
	}}
	r, cache := newTestResolver(t, searcher, nil)

	res := r.Resolve(context.Background(), "24100 Bergerac")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceAPI, res.Source)
	assert.Equal(t, 44.85, res.Latitude, "candidate with the department postal prefix wins")
	assert.Equal(t, []string{"24100 Bergerac"}, searcher.calls)

	_, cached := cache.Get("24100 Bergerac")
	assert.True(t, cached, "API results are cached")
}

func TestResolveAPIFailureFallsBackToGazetteer(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("network down")}
	r, _ := newTestResolver(t, searcher, nil)

	// Bare commune name: API is tried first, the gazetteer still answers.
	res := r.Resolve(context.Background(), "Nontron")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceGazetteer, res.Source)
	assert.Equal(t, "Nontron", res.Address)
	assert.Len(t, searcher.calls, 1)
}

func TestResolveComplexAddressViaGazetteer(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("network down")}
	r, _ := newTestResolver(t, searcher, nil)

	res := r.Resolve(context.Background(), "923 Route du Moulin 24800 Chalais")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceGazetteer, res.Source)
	assert.Equal(t, "Chalais", res.Address)
}

func TestResolveExtractedCommuneQueriesAPI(t *testing.T) {
	searcher := &fakeSearcher{candidates: []Candidate{
		{Lat: "45.1", Lon: "0.9", DisplayName: "Rouffignac, Dordogne, France"},
	}}
	r, _ := newTestResolver(t, searcher, nil)

	// Not in the gazetteer, no postal code, three words: the extracted last
	// word goes to the API as a final attempt.
	res := r.Resolve(context.Background(), "Salle communale de Rouffignac")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceAPI, res.Source)
	assert.Equal(t, []string{"Rouffignac"}, searcher.calls)
}

func TestResolveUngeocodable(t *testing.T) {
	searcher := &fakeSearcher{}
	r, _ := newTestResolver(t, searcher, nil)

	assert.Nil(t, r.Resolve(context.Background(), ""))
	assert.Nil(t, r.Resolve(context.Background(), "  "))
	assert.Nil(t, r.Resolve(context.Background(), "Non spécifié"))
	assert.Empty(t, searcher.calls)
}

func TestResolveCurlyApostropheNormalized(t *testing.T) {
	searcher := &fakeSearcher{}
	r, cache := newTestResolver(t, searcher, nil)
	cache.Add("L'atelier, Nontron", 45.53, 0.66, "api")

	res := r.Resolve(context.Background(), "L’atelier, Nontron")
	require.NotNil(t, res)
	assert.Equal(t, models.SourceCache, res.Source)
}

func TestBestCandidateDisplayNameFallback(t *testing.T) {
	searcher := &fakeSearcher{}
	r, _ := newTestResolver(t, searcher, nil)

	candidates := []Candidate{
		{DisplayName: "Quelque part, Gironde"},
		{DisplayName: "Ailleurs, Dordogne, France"},
	}
	best := r.bestCandidate(candidates)
	require.NotNil(t, best)
	assert.Equal(t, "Ailleurs, Dordogne, France", best.DisplayName)

	assert.Nil(t, r.bestCandidate(nil))
}
