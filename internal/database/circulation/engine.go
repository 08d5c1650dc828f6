// Package circulation orchestrates borrow and return events. Each operation
// spans the transaction header, its lines, and book availability, and runs
// inside a single database transaction so it either fully applies or leaves
// no trace.
package circulation

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/entities"
)

var (
	ErrNoLines             = errors.New("a borrow needs at least one line")
	ErrInvalidQuantity     = errors.New("line quantity must be at least 1")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberInactive      = errors.New("member is archived")
	ErrBookNotFound        = errors.New("book not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotInBorrowedState  = errors.New("transaction is not in borrowed state")
)

// InsufficientCopiesError reports which book could not cover a requested
// quantity. The whole borrow is aborted when any line raises it.
type InsufficientCopiesError struct {
	BookID    uint
	Requested int
	Available int
}

func (e *InsufficientCopiesError) Error() string {
	return fmt.Sprintf("book %d has %d available copies, %d requested", e.BookID, e.Available, e.Requested)
}

// BorrowLine is one book within a borrow request. DueDate nil means the
// configured loan period applies.
type BorrowLine struct {
	BookID   uint
	Quantity int
	DueDate  *time.Time
}

// BorrowRequest is a multi-book borrow event for one member.
type BorrowRequest struct {
	MemberID   uint
	Lines      []BorrowLine
	BorrowedAt time.Time // zero value means now
	Remarks    string
}

// Engine owns the borrow/return state machine.
type Engine struct {
	db     *gorm.DB
	policy config.Circulation
	now    func() time.Time
}

// NewEngine creates a circulation engine with the given loan policy.
func NewEngine(db *gorm.DB, policy config.Circulation) *Engine {
	if policy.LoanPeriodDays <= 0 {
		policy.LoanPeriodDays = config.DefaultLoanPeriodDays
	}
	if policy.DueSoonWindowDays <= 0 {
		policy.DueSoonWindowDays = config.DefaultDueSoonWindowDays
	}
	return &Engine{db: db, policy: policy, now: time.Now}
}

// SetNowFunc overrides the engine clock. Used by tests.
func (e *Engine) SetNowFunc(now func() time.Time) {
	e.now = now
}

// Borrow creates a transaction with one line per requested book and reserves
// the copies. All checks run before any write; any failing line aborts the
// whole operation with no book mutated and no transaction created.
func (e *Engine) Borrow(librarianID uint, req BorrowRequest) (*entities.Transaction, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}
	borrowedAt := req.BorrowedAt
	if borrowedAt.IsZero() {
		borrowedAt = e.now()
	}

	txn := &entities.Transaction{
		LibrarianID: librarianID,
		MemberID:    req.MemberID,
		Status:      entities.TransactionStatusBorrowed,
		BorrowedAt:  borrowedAt,
		Remarks:     req.Remarks,
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var member entities.Member
		err := tx.Unscoped().
			Where("id = ? AND librarian_id = ?", req.MemberID, librarianID).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if member.DeletedAt.Valid {
			return ErrMemberInactive
		}

		for _, line := range req.Lines {
			if line.Quantity < 1 {
				return ErrInvalidQuantity
			}
			var book entities.Book
			err := tx.Where("id = ? AND librarian_id = ?", line.BookID, librarianID).
				First(&book).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBookNotFound
				}
				return err
			}
			if book.AvailableCopies < line.Quantity {
				return &InsufficientCopiesError{
					BookID:    line.BookID,
					Requested: line.Quantity,
					Available: book.AvailableCopies,
				}
			}

			dueDate := borrowedAt.AddDate(0, 0, e.policy.LoanPeriodDays)
			if line.DueDate != nil {
				dueDate = *line.DueDate
			}
			txn.Lines = append(txn.Lines, entities.TransactionLine{
				BookID:   line.BookID,
				Quantity: line.Quantity,
				DueDate:  dueDate,
			})
		}

		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		for _, line := range req.Lines {
			// The availability guard in the WHERE clause keeps the reservation
			// safe against a concurrent borrow of the same book.
			result := tx.Model(&entities.Book{}).
				Where("id = ? AND available_copies >= ?", line.BookID, line.Quantity).
				Update("available_copies", gorm.Expr("available_copies - ?", line.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				var book entities.Book
				if err := tx.First(&book, line.BookID).Error; err != nil {
					return err
				}
				return &InsufficientCopiesError{
					BookID:    line.BookID,
					Requested: line.Quantity,
					Available: book.AvailableCopies,
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Return closes a borrowed transaction and credits every line's quantity
// back to its book. A second Return on the same transaction fails with
// ErrNotInBorrowedState instead of double-crediting copies.
func (e *Engine) Return(librarianID, transactionID uint, returnedAt *time.Time, remarks *string) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		txn, err := lockTransaction(tx, librarianID, transactionID)
		if err != nil {
			return err
		}
		if txn.Status != entities.TransactionStatusBorrowed {
			return ErrNotInBorrowedState
		}

		when := e.now()
		if returnedAt != nil {
			when = *returnedAt
		}
		updates := map[string]any{
			"status":      entities.TransactionStatusReturned,
			"returned_at": when,
		}
		if remarks != nil {
			updates["remarks"] = *remarks
		}
		if err := tx.Model(&entities.Transaction{}).
			Where("id = ?", transactionID).
			Updates(updates).Error; err != nil {
			return err
		}

		return creditLines(tx, txn.Lines)
	})
}

// Delete hard-removes a transaction and its lines, crediting each line's
// quantity back to its book regardless of status. There is no archival for
// transactions: once removed from circulation accounting the record has no
// independent meaning.
func (e *Engine) Delete(librarianID, transactionID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		txn, err := lockTransaction(tx, librarianID, transactionID)
		if err != nil {
			return err
		}

		if err := creditLines(tx, txn.Lines); err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", transactionID).
			Delete(&entities.TransactionLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Transaction{}, transactionID).Error
	})
}

// GetTransaction retrieves a transaction with lines, books, and member.
func (e *Engine) GetTransaction(librarianID, transactionID uint) (*entities.Transaction, error) {
	var txn entities.Transaction
	err := e.db.Preload("Lines").Preload("Lines.Book").Preload("Member").
		Where("id = ? AND librarian_id = ?", transactionID, librarianID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions returns the tenant's transactions newest first.
func (e *Engine) ListTransactions(librarianID uint) ([]entities.Transaction, error) {
	var txns []entities.Transaction
	err := e.db.Preload("Lines").Preload("Member").
		Where("librarian_id = ?", librarianID).
		Order("borrowed_at DESC").
		Find(&txns).Error
	return txns, err
}

func lockTransaction(tx *gorm.DB, librarianID, transactionID uint) (*entities.Transaction, error) {
	var txn entities.Transaction
	err := tx.Preload("Lines").
		Where("id = ? AND librarian_id = ?", transactionID, librarianID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// creditLines hands each line's quantity back to its book. Credits are
// clamped to total_copies so the availability invariant survives copy-count
// edits made while the transaction was open.
func creditLines(tx *gorm.DB, lines []entities.TransactionLine) error {
	for _, line := range lines {
		err := tx.Model(&entities.Book{}).Unscoped().
			Where("id = ?", line.BookID).
			Update("available_copies",
				gorm.Expr("MIN(total_copies, available_copies + ?)", line.Quantity)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
