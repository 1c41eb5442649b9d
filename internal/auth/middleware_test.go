package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/config"
)

func newMiddlewareRouter(m *Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(m.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/favourites", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestMiddleware_NoneMode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, config.Auth{Mode: config.AuthModeNone})
	m := NewMiddleware(svc, nil, config.Auth{Mode: config.AuthModeNone})
	router := newMiddlewareRouter(m)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/favourites", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 in none mode", w.Code)
	}
}

func TestMiddleware_RequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	cfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 10}
	svc := NewService(db, cfg)
	m := NewMiddleware(svc, nil, cfg)
	router := newMiddlewareRouter(m)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/favourites", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for unauthenticated request", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["code"] != "auth_required" {
		t.Errorf("code = %q, want %q", resp["code"], "auth_required")
	}
}

func TestMiddleware_PublicPaths(t *testing.T) {
	db := setupTestDB(t)
	cfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 10}
	svc := NewService(db, cfg)
	m := NewMiddleware(svc, nil, cfg)
	router := newMiddlewareRouter(m)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for public path", w.Code)
	}
}

func TestMiddleware_BearerAuth(t *testing.T) {
	db := setupTestDB(t)
	cfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 10}
	svc := NewService(db, cfg)
	m := NewMiddleware(svc, nil, cfg)
	router := newMiddlewareRouter(m)

	user, err := svc.Register("reader", "password12345")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := svc.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	t.Run("valid token authenticates", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/favourites", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 with valid bearer token", w.Code)
		}

		var resp map[string]uint
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["user_id"] != user.ID {
			t.Errorf("user_id = %d, want %d", resp["user_id"], user.ID)
		}
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/favourites", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401 for invalid token", w.Code)
		}
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/favourites", nil)
		req.Header.Set("Authorization", token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401 for malformed header", w.Code)
		}
	})
}
