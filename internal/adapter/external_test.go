package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"estatecore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func searchQuery() *model.AnalyzedQuery {
	loc := "Dubai Marina"
	beds := 2
	priceMax := 3_000_000.0
	return &model.AnalyzedQuery{
		RawText: "2 bedroom in Dubai Marina under 3m",
		Intent:  model.IntentPropertySearch,
		Params:  &model.QueryParams{Location: &loc, Bedrooms: &beds, PriceMax: &priceMax},
	}
}

func TestExternalAdapter_Disabled(t *testing.T) {
	a := NewExternalListingsAdapter("http://unused", "", zap.NewNop(), false, time.Second, 3)

	start := time.Now()
	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Nil(t, items)
	assert.Equal(t, model.StatusDisabled, status)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestExternalAdapter_Success(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":101,"title":"Marina View Tower","price":2800000,"bedrooms":2,"location":"Dubai Marina","property_type":"apartment"},
			{"id":102,"title":"Marina Gate","price":2500000,"bedrooms":2,"location":"Dubai Marina","property_type":"apartment"}
		]}`))
	}))
	defer srv.Close()

	a := NewExternalListingsAdapter(srv.URL, "test-key", zap.NewNop(), true, 2*time.Second, 3)

	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Equal(t, model.StatusOK, status)
	require.Len(t, items, 2)
	assert.Equal(t, model.SourceListings, items[0].Source)
	assert.Contains(t, items[0].Content, "Dubai Marina")
	assert.Equal(t, "101", items[0].Metadata["listing_id"])
	// first result carries the highest native rank score
	assert.Greater(t, items[0].RelevanceScore, items[1].RelevanceScore)

	q := gotQuery.Load().(string)
	assert.Contains(t, q, "location=Dubai+Marina")
	assert.Contains(t, q, "beds=2")
	assert.Contains(t, q, "max_price=3000000")
}

func TestExternalAdapter_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	a := NewExternalListingsAdapter(srv.URL, "", zap.NewNop(), true, 2*time.Second, 3)

	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Nil(t, items)
	assert.Equal(t, model.StatusError, status)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestExternalAdapter_TransientErrorRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"id":7,"title":"Recovered","price":1000000}]}`))
	}))
	defer srv.Close()

	a := NewExternalListingsAdapter(srv.URL, "", zap.NewNop(), true, 5*time.Second, 3)

	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Equal(t, model.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestExternalAdapter_MalformedResponse(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`{"data": not json`))
	}))
	defer srv.Close()

	a := NewExternalListingsAdapter(srv.URL, "", zap.NewNop(), true, 2*time.Second, 3)

	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Nil(t, items)
	assert.Equal(t, model.StatusError, status)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestExternalAdapter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	a := NewExternalListingsAdapter(srv.URL, "", zap.NewNop(), true, 50*time.Millisecond, 3)

	start := time.Now()
	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Nil(t, items)
	assert.Equal(t, model.StatusTimeout, status)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExternalAdapter_EmptyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	a := NewExternalListingsAdapter(srv.URL, "", zap.NewNop(), true, time.Second, 3)

	items, status := a.Fetch(context.Background(), searchQuery(), 5)

	assert.Empty(t, items)
	assert.Equal(t, model.StatusEmpty, status)
}
