package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/database/archive"
	"github.com/shelfward/shelfward/internal/database/catalog"
	"github.com/shelfward/shelfward/internal/database/circulation"
	"github.com/shelfward/shelfward/internal/database/members"
	"github.com/shelfward/shelfward/internal/validate"
)

// idParam parses a :id style path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain errors onto HTTP statuses: validation failures to
// 422, duplicates and state conflicts to 409, missing rows to 404, anything
// else (storage loss included) to 500.
func respondError(c *gin.Context, err error) {
	var insufficient *circulation.InsufficientCopiesError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     insufficient.Error(),
			"kind":      "insufficient_copies",
			"book_id":   insufficient.BookID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
		return
	}

	switch {
	case errors.Is(err, validate.ErrInvalidISBN),
		errors.Is(err, validate.ErrInvalidShelfName),
		errors.Is(err, validate.ErrInvalidContact),
		errors.Is(err, catalog.ErrTitleRequired),
		errors.Is(err, catalog.ErrInvalidCopies),
		errors.Is(err, members.ErrNameRequired),
		errors.Is(err, circulation.ErrNoLines),
		errors.Is(err, circulation.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, catalog.ErrDuplicateISBN),
		errors.Is(err, catalog.ErrDuplicateShelfName),
		errors.Is(err, members.ErrDuplicateContact):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "duplicate"})

	case errors.Is(err, circulation.ErrMemberInactive),
		errors.Is(err, circulation.ErrNotInBorrowedState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "state"})

	case errors.Is(err, catalog.ErrBookNotFound),
		errors.Is(err, catalog.ErrShelfNotFound),
		errors.Is(err, members.ErrMemberNotFound),
		errors.Is(err, circulation.ErrMemberNotFound),
		errors.Is(err, circulation.ErrBookNotFound),
		errors.Is(err, circulation.ErrTransactionNotFound),
		errors.Is(err, archive.ErrUnknownEntityType):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
