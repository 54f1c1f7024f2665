package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"klsescraper/cache"
	"klsescraper/config"
	"klsescraper/dividend"
	"klsescraper/export"
	"klsescraper/history"
	"klsescraper/ipo"
	"klsescraper/scrape"

	"github.com/gorilla/mux"
)

// cacheTTL bounds how long a scraped table is served from Redis before the
// next request triggers a fresh fetch. The pipelines themselves never cache.
const cacheTTL = 5 * time.Minute

const dayFormat = "2006-01-02"

type server struct {
	cfg     *config.Config
	client  *scrape.Client
	history history.Provider
}

func newServer(cfg *config.Config) *server {
	client := scrape.NewClient(cfg.HTTPTimeout)
	return &server{
		cfg:     cfg,
		client:  client,
		history: history.NewClient(client, cfg.HistoryBaseURL),
	}
}

func (s *server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/dividends", s.dividendsHandler).Methods("GET")
	router.HandleFunc("/ipos", s.iposHandler).Methods("GET")
	router.HandleFunc("/history/{ticker}/{start}/{end}", s.historyHandler).Methods("GET")
	return router
}

func (s *server) dividendsHandler(w http.ResponseWriter, r *http.Request) {
	table, err := cache.Memoize("dividends", cacheTTL, func() (dividend.Table, error) {
		return dividend.FetchURL(r.Context(), s.client, s.cfg.DividendURL)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DividendFilename))
		if err := export.Dividends(w, table); err != nil {
			writeError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(table)
}

func (s *server) iposHandler(w http.ResponseWriter, r *http.Request) {
	table, err := cache.Memoize("ipos", cacheTTL, func() (ipo.Table, error) {
		return ipo.FetchURL(r.Context(), s.client, s.cfg.IpoURL)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.IpoFilename))
		if err := export.IPOs(w, table); err != nil {
			writeError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(table)
}

func (s *server) historyHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ticker := vars["ticker"]

	start, err := time.Parse(dayFormat, vars["start"])
	if err != nil {
		http.Error(w, "invalid start date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dayFormat, vars["end"])
	if err != nil {
		http.Error(w, "invalid end date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !start.Before(end) {
		http.Error(w, "start date must be before end date", http.StatusBadRequest)
		return
	}

	cacheKey := fmt.Sprintf("history:%s:%s:%s", ticker, vars["start"], vars["end"])
	candles, err := cache.Memoize(cacheKey, cacheTTL, func() ([]history.Candle, error) {
		return s.history.Daily(r.Context(), ticker, start, end)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.HistoryFilename(ticker)))
		if err := export.History(w, candles); err != nil {
			writeError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candles)
}

// writeError maps pipeline failures to status codes: upstream fetch problems
// are a bad gateway, extraction problems are internal, a missing series is
// not found. Errors are per-request; the server keeps serving.
func writeError(w http.ResponseWriter, err error) {
	var fetchErr *scrape.FetchError
	var extractErr *scrape.ExtractError

	switch {
	case errors.Is(err, history.ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &fetchErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &extractErr):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
