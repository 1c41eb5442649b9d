package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmate/shelfmate/internal/books"
)

type stubSearcher struct {
	results []books.BookRecord
	err     error

	lastQuery string
	lastTopic string
}

func (s *stubSearcher) Search(_ context.Context, query, topic string) ([]books.BookRecord, error) {
	s.lastQuery = query
	s.lastTopic = topic
	return s.results, s.err
}

func newSearchRouter(searcher BookSearcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewSearchController(searcher)
	router := gin.New()
	router.GET("/api/search", controller.Search)
	return router
}

func TestSearchController_Search(t *testing.T) {
	t.Run("returns results from the gateway", func(t *testing.T) {
		searcher := &stubSearcher{
			results: []books.BookRecord{
				{ID: "vol-1", Title: "The Go Programming Language"},
				{ID: "vol-2", Title: "Learning Go"},
			},
		}
		router := newSearchRouter(searcher)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/search?q=golang&topic=programming", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "golang", searcher.lastQuery)
		assert.Equal(t, "programming", searcher.lastTopic)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Results, 2)
		assert.Equal(t, 2, resp.Total)
		assert.Empty(t, resp.Warning)
	})

	t.Run("requires a query", func(t *testing.T) {
		router := newSearchRouter(&stubSearcher{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/search", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("degrades to empty results when the service is unreachable", func(t *testing.T) {
		searcher := &stubSearcher{err: books.ErrUnavailable}
		router := newSearchRouter(searcher)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/search?q=golang", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
		assert.NotEmpty(t, resp.Warning)
	})

	t.Run("degrades on a malformed upstream payload", func(t *testing.T) {
		searcher := &stubSearcher{err: books.ErrMalformedResponse}
		router := newSearchRouter(searcher)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/search?q=golang", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Results)
		assert.NotEmpty(t, resp.Warning)
	})

	t.Run("unexpected errors are a 500", func(t *testing.T) {
		searcher := &stubSearcher{err: errors.New("boom")}
		router := newSearchRouter(searcher)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/search?q=golang", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
