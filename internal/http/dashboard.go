package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/database/reports"
)

// DashboardController exposes the aggregate counts and the due-soon panel.
type DashboardController struct {
	reports *reports.Repository
}

// NewDashboardController creates a new dashboard controller.
func NewDashboardController(repo *reports.Repository) *DashboardController {
	return &DashboardController{reports: repo}
}

// Counts returns total catalog copies, active members and copies out on loan.
func (dc *DashboardController) Counts(c *gin.Context) {
	librarianID := auth.LibrarianID(c)

	books, err := dc.reports.CountActiveBooks(librarianID)
	if err != nil {
		respondError(c, err)
		return
	}
	members, err := dc.reports.CountActiveMembers(librarianID)
	if err != nil {
		respondError(c, err)
		return
	}
	borrowed, err := dc.reports.CountOpenTransactionLines(librarianID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_book_copies": books,
		"active_members":    members,
		"borrowed_copies":   borrowed,
	})
}

// DueSoon returns open loan lines inside the due-soon window, overdue lines
// included, each classified against today's date.
func (dc *DashboardController) DueSoon(c *gin.Context) {
	lines, err := dc.reports.ListDueSoon(auth.LibrarianID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines, "count": len(lines)})
}
