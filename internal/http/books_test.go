package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfward/shelfward/internal/database"
	"github.com/shelfward/shelfward/internal/database/catalog"
)

func setupBooksTest(t *testing.T) (*catalog.Repository, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := catalog.NewRepository(db.DB)
	controller := NewBooksController(repo)

	router := gin.New()
	router.GET("/api/books", controller.ListBooks)
	router.POST("/api/books", controller.CreateBook)
	router.GET("/api/books/:id", controller.GetBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return repo, router, cleanup
}

func TestBooksController_ListBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		_, router, cleanup := setupBooksTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Equal(t, float64(0), response["count"])
		assert.Empty(t, response["books"])
	})

	t.Run("returns books with count", func(t *testing.T) {
		repo, router, cleanup := setupBooksTest(t)
		defer cleanup()

		_, err := repo.CreateBook(0, catalog.NewBook{Title: "Book 1", Copies: 1})
		require.NoError(t, err)
		_, err = repo.CreateBook(0, catalog.NewBook{Title: "Book 2", Copies: 1})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err = json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Equal(t, float64(2), response["count"])
		books := response["books"].([]interface{})
		assert.Len(t, books, 2)
	})
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates a book", func(t *testing.T) {
		_, router, cleanup := setupBooksTest(t)
		defer cleanup()

		body := `{"title":"New Arrival","copies":3,"isbn":"9780306406157","authors":["Hunt"]}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(3), response["available_copies"])
	})

	t.Run("rejects a bad checksum with 422", func(t *testing.T) {
		_, router, cleanup := setupBooksTest(t)
		defer cleanup()

		body := `{"title":"Bad ISBN","copies":1,"isbn":"9780306406158"}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects a duplicate isbn with 409", func(t *testing.T) {
		repo, router, cleanup := setupBooksTest(t)
		defer cleanup()

		_, err := repo.CreateBook(0, catalog.NewBook{Title: "First", ISBN: "9780306406157", Copies: 1})
		require.NoError(t, err)

		body := `{"title":"Second","copies":1,"isbn":"9780306406157"}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "duplicate")
	})
}

func TestBooksController_GetBook(t *testing.T) {
	t.Run("returns 404 for a missing book", func(t *testing.T) {
		_, router, cleanup := setupBooksTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 for a malformed id", func(t *testing.T) {
		_, router, cleanup := setupBooksTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/not-a-number", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	repo, router, cleanup := setupBooksTest(t)
	defer cleanup()

	book, err := repo.CreateBook(0, catalog.NewBook{Title: "Doomed", Copies: 1})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/books/"+itoa(book.ID), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Archived: gone from lookups
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/books/"+itoa(book.ID), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
