package scrape

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func TestGetSendsBrowserIdentity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		require.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	body, err := NewClient(0).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", body)
}

func TestGetDecodesGzip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte("compressed body"))
		zw.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	body, err := NewClient(0).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, "compressed body", body)
}

func TestGetDecodesBrotli(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		bw.Write([]byte("brotli body"))
		bw.Close()

		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	body, err := NewClient(0).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, "brotli body", body)
}

func TestGetDecodesZstd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		zw.Write([]byte("zstd body"))
		zw.Close()

		w.Header().Set("Content-Encoding", "zstd")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	body, err := NewClient(0).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, "zstd body", body)
}

func TestGetNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := NewClient(0).Get(context.Background(), ts.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	require.Contains(t, fetchErr.Error(), "status code 503")
}

func TestGetTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer ts.Close()

	_, err := NewClient(20*time.Millisecond).Get(context.Background(), ts.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Zero(t, fetchErr.StatusCode)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "ACE Market", CleanText("  ACE\nMarket \t"))
	require.Equal(t, "a b c", CleanText("a\n\nb\t\tc"))
	require.Equal(t, "", CleanText(" \n\t "))
}
