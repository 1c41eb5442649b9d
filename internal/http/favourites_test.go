package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmate/shelfmate/internal/progress"
)

func setupProgressStore(t *testing.T) *progress.Store {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := progress.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newFavouritesRouter(store *progress.Store) *gin.Engine {
	controller := NewFavouritesController(store, nil)
	router := gin.New()
	router.GET("/api/favourites", controller.ListFavourites)
	router.POST("/api/favourites/:bookId", controller.AddFavourite)
	router.DELETE("/api/favourites/:bookId", controller.RemoveFavourite)
	return router
}

func TestFavouritesController_AddFavourite(t *testing.T) {
	t.Run("adds a book to favourites", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newFavouritesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/favourites/vol-abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		record, err := store.Get(0)
		require.NoError(t, err)
		assert.Equal(t, []string{"vol-abc"}, record.Favorites)
	})

	t.Run("adding an existing favourite is a no-op", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newFavouritesRouter(store)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/favourites/vol-abc", nil)
			router.ServeHTTP(w, req)

			if i == 0 {
				assert.Equal(t, http.StatusCreated, w.Code)
			} else {
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}

		record, err := store.Get(0)
		require.NoError(t, err)
		assert.Equal(t, []string{"vol-abc"}, record.Favorites)
	})
}

func TestFavouritesController_RemoveFavourite(t *testing.T) {
	t.Run("removes an existing favourite", func(t *testing.T) {
		store := setupProgressStore(t)
		_, err := store.AddFavorite(0, "vol-abc")
		require.NoError(t, err)

		router := newFavouritesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/favourites/vol-abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		record, err := store.Get(0)
		require.NoError(t, err)
		assert.Empty(t, record.Favorites)
	})

	t.Run("returns 404 for a book that is not a favourite", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newFavouritesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/favourites/vol-missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "favorite_not_found", resp.Code)
	})
}

func TestFavouritesController_ListFavourites(t *testing.T) {
	t.Run("returns empty list when no favourites", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newFavouritesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/favourites", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Favourites []string `json:"favourites"`
			Total      int      `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Favourites)
		assert.Empty(t, resp.Favourites)
		assert.Zero(t, resp.Total)
	})

	t.Run("returns favourites in insertion order", func(t *testing.T) {
		store := setupProgressStore(t)
		for _, id := range []string{"vol-c", "vol-a", "vol-b"} {
			_, err := store.AddFavorite(0, id)
			require.NoError(t, err)
		}

		router := newFavouritesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/favourites", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Favourites []string `json:"favourites"`
			Total      int      `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"vol-c", "vol-a", "vol-b"}, resp.Favourites)
		assert.Equal(t, 3, resp.Total)
	})
}
