package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/database/circulation"
)

// CirculationController exposes borrow, return and transaction management.
type CirculationController struct {
	engine *circulation.Engine
}

// NewCirculationController creates a new circulation controller.
func NewCirculationController(engine *circulation.Engine) *CirculationController {
	return &CirculationController{engine: engine}
}

type borrowLineRequest struct {
	BookID   uint       `json:"book_id" binding:"required"`
	Quantity int        `json:"quantity" binding:"required"`
	DueDate  *time.Time `json:"due_date"`
}

type borrowRequest struct {
	MemberID   uint                `json:"member_id" binding:"required"`
	Lines      []borrowLineRequest `json:"lines" binding:"required"`
	BorrowedAt *time.Time          `json:"borrowed_at"`
	Remarks    string              `json:"remarks"`
}

// Borrow records a multi-book checkout for one member.
func (cc *CirculationController) Borrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	borrow := circulation.BorrowRequest{
		MemberID: req.MemberID,
		Remarks:  req.Remarks,
	}
	if req.BorrowedAt != nil {
		borrow.BorrowedAt = *req.BorrowedAt
	}
	for _, line := range req.Lines {
		borrow.Lines = append(borrow.Lines, circulation.BorrowLine{
			BookID:   line.BookID,
			Quantity: line.Quantity,
			DueDate:  line.DueDate,
		})
	}

	txn, err := cc.engine.Borrow(auth.LibrarianID(c), borrow)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

type returnRequest struct {
	ReturnedAt *time.Time `json:"returned_at"`
	Remarks    *string    `json:"remarks"`
}

// Return marks a borrowed transaction as returned and credits its copies.
func (cc *CirculationController) Return(c *gin.Context) {
	txnID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req returnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := cc.engine.Return(auth.LibrarianID(c), txnID, req.ReturnedAt, req.Remarks); err != nil {
		respondError(c, err)
		return
	}
	txn, err := cc.engine.GetTransaction(auth.LibrarianID(c), txnID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// GetTransaction returns one transaction with its lines, member and books.
func (cc *CirculationController) GetTransaction(c *gin.Context) {
	txnID, ok := idParam(c, "id")
	if !ok {
		return
	}
	txn, err := cc.engine.GetTransaction(auth.LibrarianID(c), txnID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// ListTransactions returns the librarian's transaction history.
func (cc *CirculationController) ListTransactions(c *gin.Context) {
	txns, err := cc.engine.ListTransactions(auth.LibrarianID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns)})
}

// DeleteTransaction removes a transaction record and credits its copies.
func (cc *CirculationController) DeleteTransaction(c *gin.Context) {
	txnID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := cc.engine.Delete(auth.LibrarianID(c), txnID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}
