package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/geoqa/pkg/ontology"
)

func open(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func governmentKeys(types *ontology.GovernmentTypes) []string {
	var keys []string
	for pair := types.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func TestParseCountryLinks(t *testing.T) {
	links, err := ParseCountryLinks(open(t, "list.html"))
	require.NoError(t, err)
	assert.Equal(t, []CountryLink{
		{Name: "france", Link: "/wiki/France"},
		{Name: "guinea", Link: "/wiki/Guinea"},
		{Name: "new_zealand", Link: "/wiki/New_Zealand"},
		{Name: "uk", Link: "/wiki/United_Kingdom"},
		{Name: "south_georgia", Link: "/wiki/South_Georgia"},
	}, links)
}

func TestParseInfobox(t *testing.T) {
	box, err := ParseInfobox(open(t, "france.html"), "/wiki/France")
	require.NoError(t, err)
	r := box.Record

	assert.Equal(t, "/wiki/France", r.CountryLink)
	require.NotNil(t, box.President)
	assert.Equal(t, Leader{Name: "emmanuel_macron", Link: "/wiki/Emmanuel_Macron"}, *box.President)
	assert.Equal(t, "emmanuel_macron", *r.PresidentName)
	require.NotNil(t, box.PrimeMinister)
	assert.Equal(t, "/wiki/Michel_Barnier", *r.PrimeMinisterLink)
	assert.Equal(t, "paris", *r.CapitalName)
	assert.Equal(t, "/wiki/Paris", *r.CapitalLink)
	assert.Equal(t, uint64(643801), *r.Area)
	assert.Equal(t, uint64(67000000), *r.Population)
	assert.Equal(t, []string{"unitary_state", "semi_presidential_system", "republic"}, governmentKeys(r.GovernmentTypes))
	assert.Nil(t, r.PresidentBirthday)
}

func TestParseInfoboxPartial(t *testing.T) {
	box, err := ParseInfobox(open(t, "guinea.html"), "/wiki/Guinea")
	require.NoError(t, err)
	r := box.Record

	assert.Nil(t, box.PrimeMinister)
	assert.Nil(t, r.PrimeMinisterName)
	assert.Nil(t, r.Area)
	assert.Nil(t, r.Population)
	assert.Equal(t, "mamady_doumbouya", *r.PresidentName)
	// Types after the de jure marker are left out.
	assert.Equal(t, []string{"unitary_state", "presidential_republic"}, governmentKeys(r.GovernmentTypes))
}

func TestParseInfoboxMissing(t *testing.T) {
	_, err := ParseInfobox(strings.NewReader("<html><body><p>stub</p></body></html>"), "/wiki/Atlantis")
	assert.ErrorIs(t, err, ErrNoInfobox)
}

func TestParseBirthday(t *testing.T) {
	day, ok, err := ParseBirthday(open(t, "macron.html"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1977-12-21", day)

	_, ok, err = ParseBirthday(strings.NewReader("<p>no date</p>"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseInfoboxAnnotatedNumbers(t *testing.T) {
	page := `<html><body><table class="infobox">
<tr><th>Area</th><td></td></tr>
<tr><th>• Total</th><td>1,234 (2020 estimate)</td></tr>
<tr><th>Population</th><td></td></tr>
<tr><th>• 2023 census</th><td>5,000,000 (2023)</td></tr>
</table></body></html>`
	box, err := ParseInfobox(strings.NewReader(page), "/wiki/Nowhere")
	require.NoError(t, err)
	require.NotNil(t, box.Record.Area)
	require.NotNil(t, box.Record.Population)
	assert.Equal(t, uint64(1234), *box.Record.Area)
	assert.Equal(t, uint64(5000000), *box.Record.Population)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *uint64
	}{
		{"1,234,567 (est.)", ontology.Ptr(uint64(1234567))},
		{"1,234 (2020)", ontology.Ptr(uint64(1234))},
		{"643,801\u00a0km", ontology.Ptr(uint64(643801))},
		{"  42  ", ontology.Ptr(uint64(42))},
		{"unknown", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, number(tt.in))
		})
	}
}

// wikiServer serves the testdata pages. Paths in missing answer 404.
func wikiServer(t *testing.T, hits *atomic.Int32, missing ...string) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		ListPath:                "list.html",
		"/wiki/France":          "france.html",
		"/wiki/Guinea":          "guinea.html",
		"/wiki/Emmanuel_Macron": "macron.html",
		"/wiki/Michel_Barnier":  "barnier.html",
	}
	for _, p := range missing {
		delete(pages, p)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "geoqa-test", r.Header.Get("User-Agent"))
		if r.URL.Path == "/wiki/Mamady_Doumbouya" {
			w.Write([]byte("<html><body>no birthday here</body></html>"))
			return
		}
		name, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join("testdata", name))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCrawl(t *testing.T) {
	var hits atomic.Int32
	srv := wikiServer(t, &hits)

	c := NewCrawler("geoqa-test", 2)
	c.BaseURL = srv.URL

	records, err := c.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2, "countries without a page are skipped")

	france := records[0]
	assert.Equal(t, "/wiki/France", france.CountryLink)
	assert.Equal(t, "1977-12-21", *france.PresidentBirthday)
	assert.Equal(t, "1951-01-09", *france.PrimeMinisterBirthday)

	guinea := records[1]
	assert.Equal(t, "/wiki/Guinea", guinea.CountryLink)
	assert.Nil(t, guinea.PresidentBirthday)

	// list, five countries, three leader pages
	assert.Equal(t, int32(9), hits.Load())
}

func TestCrawlKeepsCountryWhenLeaderPageFails(t *testing.T) {
	var hits atomic.Int32
	srv := wikiServer(t, &hits, "/wiki/Emmanuel_Macron")

	c := NewCrawler("geoqa-test", 2)
	c.BaseURL = srv.URL

	records, err := c.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	france := records[0]
	assert.Equal(t, "/wiki/France", france.CountryLink)
	assert.Equal(t, "/wiki/Emmanuel_Macron", *france.PresidentLink)
	assert.Nil(t, france.PresidentBirthday)
	assert.Equal(t, "1951-01-09", *france.PrimeMinisterBirthday)
	assert.Equal(t, "/wiki/Paris", *france.CapitalLink)
	assert.Equal(t, uint64(67000000), *france.Population)
	assert.Equal(t, uint64(643801), *france.Area)
	assert.Equal(t, []string{"unitary_state", "semi_presidential_system", "republic"}, governmentKeys(france.GovernmentTypes))
}

func TestCrawlListFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewCrawler("", 1)
	c.BaseURL = srv.URL
	_, err := c.Crawl(context.Background())
	assert.ErrorContains(t, err, "country list")
}

func TestCrawlCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := wikiServer(t, &hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCrawler("geoqa-test", 2)
	c.BaseURL = srv.URL
	_, err := c.Crawl(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
