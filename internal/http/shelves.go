package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/database/catalog"
)

// ShelvesController exposes shelf management.
type ShelvesController struct {
	catalog *catalog.Repository
}

// NewShelvesController creates a new shelves controller.
func NewShelvesController(cat *catalog.Repository) *ShelvesController {
	return &ShelvesController{catalog: cat}
}

type createShelfRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateShelf adds a named shelf location.
func (sc *ShelvesController) CreateShelf(c *gin.Context) {
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	shelf, err := sc.catalog.CreateShelf(auth.LibrarianID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shelf)
}

// GetShelf returns a single active shelf.
func (sc *ShelvesController) GetShelf(c *gin.Context) {
	shelfID, ok := idParam(c, "id")
	if !ok {
		return
	}
	shelf, err := sc.catalog.GetShelf(auth.LibrarianID(c), shelfID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shelf)
}

// ListShelves returns active shelves ordered by name.
func (sc *ShelvesController) ListShelves(c *gin.Context) {
	shelves, err := sc.catalog.ListShelves(auth.LibrarianID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": shelves, "count": len(shelves)})
}

// DeleteShelf archives a shelf and moves its books to the unassigned bucket.
func (sc *ShelvesController) DeleteShelf(c *gin.Context) {
	shelfID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := sc.catalog.SoftDeleteShelf(auth.LibrarianID(c), shelfID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shelf deleted"})
}
