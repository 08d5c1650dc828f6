package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/database/catalog"
)

// BooksController exposes catalog book management.
type BooksController struct {
	catalog *catalog.Repository
}

// NewBooksController creates a new books controller.
func NewBooksController(cat *catalog.Repository) *BooksController {
	return &BooksController{catalog: cat}
}

type createBookRequest struct {
	Title       string   `json:"title" binding:"required"`
	Publisher   string   `json:"publisher"`
	Description string   `json:"description"`
	ISBN        string   `json:"isbn"`
	Copies      int      `json:"copies"`
	ShelfID     *uint    `json:"shelf_id"`
	Authors     []string `json:"authors"`
	Genres      []string `json:"genres"`
}

// CreateBook registers a new title in the catalog.
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := bc.catalog.CreateBook(auth.LibrarianID(c), catalog.NewBook{
		Title:       req.Title,
		Publisher:   req.Publisher,
		Description: req.Description,
		ISBN:        req.ISBN,
		Copies:      req.Copies,
		ShelfID:     req.ShelfID,
		Authors:     req.Authors,
		Genres:      req.Genres,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

type updateBookRequest struct {
	Title       *string   `json:"title"`
	Publisher   *string   `json:"publisher"`
	Description *string   `json:"description"`
	ISBN        *string   `json:"isbn"`
	TotalCopies *int      `json:"total_copies"`
	ShelfID     *uint     `json:"shelf_id"`
	ClearShelf  bool      `json:"clear_shelf"`
	Authors     *[]string `json:"authors"`
	Genres      *[]string `json:"genres"`
}

// UpdateBook applies a partial edit to a book.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	bookID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := bc.catalog.UpdateBook(auth.LibrarianID(c), bookID, catalog.BookUpdate{
		Title:       req.Title,
		Publisher:   req.Publisher,
		Description: req.Description,
		ISBN:        req.ISBN,
		TotalCopies: req.TotalCopies,
		ShelfID:     req.ShelfID,
		ClearShelf:  req.ClearShelf,
		Authors:     req.Authors,
		Genres:      req.Genres,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetBook returns a single active book with its tags and shelf.
func (bc *BooksController) GetBook(c *gin.Context) {
	bookID, ok := idParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalog.BookWithTags(auth.LibrarianID(c), bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// ListBooks returns active books. Supports ?sort=, ?shelf_id= and
// ?unshelved=true query filters.
func (bc *BooksController) ListBooks(c *gin.Context) {
	filter := catalog.ListFilter{Sort: catalog.SortOrder(c.Query("sort"))}
	if raw := c.Query("shelf_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelf_id"})
			return
		}
		shelfID := uint(id)
		filter.ShelfID = &shelfID
	}
	if c.Query("unshelved") == "true" {
		filter.Unshelved = true
	}

	books, err := bc.catalog.ListActive(auth.LibrarianID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// DeleteBook archives a book. ?permanent=true removes it outright.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	bookID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var err error
	if c.Query("permanent") == "true" {
		err = bc.catalog.DeleteBookPermanently(auth.LibrarianID(c), bookID)
	} else {
		err = bc.catalog.SoftDeleteBook(auth.LibrarianID(c), bookID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}
