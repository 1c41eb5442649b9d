package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/books"
)

// BookSearcher defines the lookup operation against the external book API.
type BookSearcher interface {
	Search(ctx context.Context, query, topic string) ([]books.BookRecord, error)
}

type SearchController struct {
	searcher BookSearcher
}

func NewSearchController(searcher BookSearcher) *SearchController {
	return &SearchController{searcher: searcher}
}

// SearchResponse is the payload for book lookups. Warning is set when the
// upstream service could not be reached and results are degraded.
type SearchResponse struct {
	Results []books.BookRecord `json:"results"`
	Total   int                `json:"total"`
	Warning string             `json:"warning,omitempty"`
}

// Search looks up books through the external API.
// GET /api/search?q=<query>&topic=<topic>
func (sc *SearchController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}
	topic := c.Query("topic")

	results, err := sc.searcher.Search(c.Request.Context(), query, topic)
	if err != nil {
		// Upstream failures degrade to an empty result set. The caller
		// still gets a 200 so a flaky lookup service never breaks the UI.
		if errors.Is(err, books.ErrUnavailable) || errors.Is(err, books.ErrMalformedResponse) {
			log.Printf("Book lookup degraded for query %q: %v", query, err)
			c.JSON(http.StatusOK, SearchResponse{
				Results: []books.BookRecord{},
				Total:   0,
				Warning: "book lookup is temporarily unavailable",
			})
			return
		}
		respondInternalError(c, err, "book search")
		return
	}

	if results == nil {
		results = []books.BookRecord{}
	}

	c.JSON(http.StatusOK, SearchResponse{
		Results: results,
		Total:   len(results),
	})
}
