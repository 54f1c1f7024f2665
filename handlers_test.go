package main

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"klsescraper/cache"
	"klsescraper/config"
	"klsescraper/history"
	"klsescraper/scrape"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// keep handler tests deterministic even when a local redis is running
	cache.Init("localhost:1")
	os.Exit(m.Run())
}

const dividendPage = `<script>
var dtdata = [["02-Jan-2024","ABC Bhd","1.20","1.25","0.05","15-Jan-2024","1234","","/web/stock/entitlement/1234"]];
</script>`

func testServer(dividendURL, ipoURL string) *server {
	return newServer(&config.Config{
		DividendURL: dividendURL,
		IpoURL:      ipoURL,
		HTTPTimeout: scrape.DefaultTimeout,
	})
}

func TestDividendsHandlerCSV(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dividendPage))
	}))
	defer source.Close()

	s := testServer(source.URL, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/dividends?format=csv", nil)

	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "dividend.csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "ABC Bhd", rows[1][2])
}

func TestDividendsHandlerUpstreamFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer source.Close()

	s := testServer(source.URL, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/dividends", nil)

	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestIposHandlerExtractFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>no table here</body></html>"))
	}))
	defer source.Close()

	s := testServer("", source.URL)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ipos", nil)

	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "no table found")
}

func TestHistoryHandlerBadRange(t *testing.T) {
	s := testServer("", "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/history/5158.KL/2024-02-01/2024-01-01", nil)

	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryHandlerBadDate(t *testing.T) {
	s := testServer("", "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/history/5158.KL/yesterday/2024-01-01", nil)

	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubProvider struct {
	err error
}

func (p stubProvider) Daily(ctx context.Context, ticker string, start, end time.Time) ([]history.Candle, error) {
	return nil, p.err
}

func TestHistoryHandlerNoData(t *testing.T) {
	s := testServer("", "")
	s.history = stubProvider{err: history.ErrNoData}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/history/BOGUS.KL/2024-01-01/2024-02-01", nil)

	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "no data"))
}
