package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/database/archive"
)

// ArchiveController exposes archived record listings and restores.
type ArchiveController struct {
	archive *archive.Repository
}

// NewArchiveController creates a new archive controller.
func NewArchiveController(repo *archive.Repository) *ArchiveController {
	return &ArchiveController{archive: repo}
}

// List returns archived records of one entity type, most recently archived
// first. ?q= filters by a substring of the display fields.
func (ac *ArchiveController) List(c *gin.Context) {
	librarianID := auth.LibrarianID(c)
	query := c.Query("q")

	switch archive.EntityType(c.Param("type")) {
	case archive.EntityBook:
		var (
			books any
			err   error
		)
		if query != "" {
			books, err = ac.archive.SearchArchivedBooks(librarianID, query)
		} else {
			books, err = ac.archive.ListArchivedBooks(librarianID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": books})

	case archive.EntityMember:
		var (
			list any
			err  error
		)
		if query != "" {
			list, err = ac.archive.SearchArchivedMembers(librarianID, query)
		} else {
			list, err = ac.archive.ListArchivedMembers(librarianID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": list})

	case archive.EntityShelf:
		var (
			shelves any
			err     error
		)
		if query != "" {
			shelves, err = ac.archive.SearchArchivedShelves(librarianID, query)
		} else {
			shelves, err = ac.archive.ListArchivedShelves(librarianID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shelves": shelves})

	default:
		c.JSON(http.StatusNotFound, gin.H{"error": archive.ErrUnknownEntityType.Error()})
	}
}

// Restore brings an archived record back into active circulation.
func (ac *ArchiveController) Restore(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	entityType := archive.EntityType(c.Param("type"))
	if err := ac.archive.Restore(entityType, auth.LibrarianID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "restored"})
}
