package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmate/shelfmate/internal/progress"
)

func newNotesRouter(store *progress.Store) *gin.Engine {
	controller := NewNotesController(store, nil)
	router := gin.New()
	router.GET("/api/notes", controller.ListNotes)
	router.POST("/api/notes/:bookId", controller.AddNote)
	return router
}

func postNote(router *gin.Engine, bookID string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/notes/"+bookID, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestNotesController_AddNote(t *testing.T) {
	t.Run("appends a note", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newNotesRouter(store)

		w := postNote(router, "vol-abc", gin.H{"text": "chapter 3 is the key idea"})

		assert.Equal(t, http.StatusCreated, w.Code)

		var note progress.Note
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
		assert.NotEmpty(t, note.ID)
		assert.Equal(t, "vol-abc", note.BookID)
		assert.Equal(t, "chapter 3 is the key idea", note.Text)
	})

	t.Run("two notes produce two entries", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newNotesRouter(store)

		w1 := postNote(router, "vol-abc", gin.H{"text": "first"})
		w2 := postNote(router, "vol-abc", gin.H{"text": "second"})
		assert.Equal(t, http.StatusCreated, w1.Code)
		assert.Equal(t, http.StatusCreated, w2.Code)

		record, err := store.Get(0)
		require.NoError(t, err)
		require.Len(t, record.Notes, 2)
		assert.Equal(t, "first", record.Notes[0].Text)
		assert.Equal(t, "second", record.Notes[1].Text)
		assert.NotEqual(t, record.Notes[0].ID, record.Notes[1].ID)
	})

	t.Run("rejects missing text", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newNotesRouter(store)

		w := postNote(router, "vol-abc", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNotesController_ListNotes(t *testing.T) {
	t.Run("returns notes oldest first", func(t *testing.T) {
		store := setupProgressStore(t)
		_, err := store.AddNote(0, "vol-a", "first")
		require.NoError(t, err)
		_, err = store.AddNote(0, "vol-b", "second")
		require.NoError(t, err)

		router := newNotesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/notes", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Notes []progress.Note `json:"notes"`
			Total int             `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Notes, 2)
		assert.Equal(t, "first", resp.Notes[0].Text)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("returns empty list when no notes", func(t *testing.T) {
		store := setupProgressStore(t)
		router := newNotesRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/notes", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Notes []progress.Note `json:"notes"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Notes)
		assert.Empty(t, resp.Notes)
	})
}
