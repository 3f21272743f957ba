package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfitcal/daybook/internal/common"
)

func TestSearch_FirstMatchUsed(t *testing.T) {
	var gotQuery, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"35.68","lon":"139.76","display_name":"Tokyo, Japan"},{"lat":"0","lon":"0","display_name":"other"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	p, err := c.Search(context.Background(), "  Tokyo ")
	require.NoError(t, err)

	assert.Equal(t, "Tokyo", gotQuery)
	assert.Equal(t, "1", gotLimit)
	assert.Equal(t, 35.68, p.Lat)
	assert.Equal(t, 139.76, p.Lon)
	assert.Equal(t, "Tokyo, Japan", p.DisplayName)
}

func TestSearch_BlankQueryRejectedBeforeCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.False(t, called, "blank query must not reach the network")
}

func TestSearch_EmptyResultIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "Nowhereville")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "more specific")
}

func TestSearch_Non2xxIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "Tokyo")
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}

func TestSearch_TransportErrorIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // dead endpoint

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "Tokyo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrServiceUnavailable))
}

func TestSearch_MissingDisplayNameFallsBackToQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1.5","lon":"2.5"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	p, err := c.Search(context.Background(), "Shibuya")
	require.NoError(t, err)
	assert.Equal(t, "Shibuya", p.DisplayName)
}
