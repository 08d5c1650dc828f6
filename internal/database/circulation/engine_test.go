package circulation

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Engine, func()) {
	dbPath := "./test_circulation_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Librarian{},
		&entities.Book{},
		&entities.Member{},
		&entities.Transaction{},
		&entities.TransactionLine{},
	)
	require.NoError(t, err)

	engine := NewEngine(db, config.Circulation{LoanPeriodDays: 14, DueSoonWindowDays: 7})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, engine, cleanup
}

func createTestBook(t *testing.T, db *gorm.DB, librarianID uint, title string, copies int) *entities.Book {
	book := &entities.Book{
		LibrarianID:     librarianID,
		Title:           title,
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func createTestMember(t *testing.T, db *gorm.DB, librarianID uint) *entities.Member {
	member := &entities.Member{
		LibrarianID:   librarianID,
		FirstName:     "Test",
		LastName:      "Member",
		ContactNumber: "09171234567",
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func bookAvailability(t *testing.T, db *gorm.DB, bookID uint) int {
	var book entities.Book
	require.NoError(t, db.Unscoped().First(&book, bookID).Error)
	return book.AvailableCopies
}

func TestEngine_Borrow(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Borrowable", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusBorrowed, txn.Status)
	require.Len(t, txn.Lines, 1)
	assert.Equal(t, 3, bookAvailability(t, db, book.ID))
}

func TestEngine_Borrow_DefaultDueDate(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Due", 1)
	member := createTestMember(t, db, 1)

	borrowedAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID:   member.ID,
		BorrowedAt: borrowedAt,
		Lines:      []BorrowLine{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, borrowedAt.AddDate(0, 0, 14), txn.Lines[0].DueDate)

	// An explicit due date wins over the loan period
	custom := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	book2 := createTestBook(t, db, 1, "Custom", 1)
	txn, err = engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book2.ID, Quantity: 1, DueDate: &custom}},
	})
	require.NoError(t, err)
	assert.Equal(t, custom, txn.Lines[0].DueDate)
}

func TestEngine_Borrow_UntilExhausted(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Popular", 5)
	member := createTestMember(t, db, 1)

	_, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, bookAvailability(t, db, book.ID))

	// Nothing left: the borrow fails and availability is unchanged
	_, err = engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 1}},
	})
	var insufficient *InsufficientCopiesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, book.ID, insufficient.BookID)
	assert.Equal(t, 1, insufficient.Requested)
	assert.Equal(t, 0, insufficient.Available)
	assert.Equal(t, 0, bookAvailability(t, db, book.ID))
}

func TestEngine_Borrow_MultiLineAtomicity(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	plenty := createTestBook(t, db, 1, "Plenty", 5)
	scarce := createTestBook(t, db, 1, "Scarce", 1)
	member := createTestMember(t, db, 1)

	_, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines: []BorrowLine{
			{BookID: plenty.ID, Quantity: 2},
			{BookID: scarce.ID, Quantity: 3},
		},
	})
	var insufficient *InsufficientCopiesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, scarce.ID, insufficient.BookID)

	// The failing line aborted the whole borrow
	assert.Equal(t, 5, bookAvailability(t, db, plenty.ID))
	assert.Equal(t, 1, bookAvailability(t, db, scarce.ID))
	var count int64
	db.Model(&entities.Transaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestEngine_Borrow_Validation(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Book", 1)
	member := createTestMember(t, db, 1)

	_, err := engine.Borrow(1, BorrowRequest{MemberID: member.ID})
	assert.ErrorIs(t, err, ErrNoLines)

	_, err = engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.Borrow(1, BorrowRequest{
		MemberID: 9999,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: 9999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestEngine_Borrow_ArchivedMemberAndBook(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Book", 1)
	member := createTestMember(t, db, 1)
	require.NoError(t, db.Delete(member).Error)

	_, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMemberInactive)

	// Archived books are not borrow-eligible either
	member2 := createTestMember(t, db, 1)
	require.NoError(t, db.Delete(book).Error)
	_, err = engine.Borrow(1, BorrowRequest{
		MemberID: member2.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestEngine_ReturnRoundTrip(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Returned", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, bookAvailability(t, db, book.ID))

	remarks := "returned in good shape"
	require.NoError(t, engine.Return(1, txn.ID, nil, &remarks))
	assert.Equal(t, 5, bookAvailability(t, db, book.ID))

	reloaded, err := engine.GetTransaction(1, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusReturned, reloaded.Status)
	require.NotNil(t, reloaded.ReturnedAt)
	assert.Equal(t, remarks, reloaded.Remarks)
}

func TestEngine_DoubleReturn(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Once", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, engine.Return(1, txn.ID, nil, nil))

	// A second return must not credit the copies again
	assert.ErrorIs(t, engine.Return(1, txn.ID, nil, nil), ErrNotInBorrowedState)
	assert.Equal(t, 5, bookAvailability(t, db, book.ID))
}

func TestEngine_Delete_CreditsOpenLoan(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Deleted", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, bookAvailability(t, db, book.ID))

	require.NoError(t, engine.Delete(1, txn.ID))
	assert.Equal(t, 5, bookAvailability(t, db, book.ID))

	_, err = engine.GetTransaction(1, txn.ID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	var count int64
	db.Model(&entities.TransactionLine{}).Where("transaction_id = ?", txn.ID).Count(&count)
	assert.Zero(t, count)
}

func TestEngine_Delete_ClampsCreditToTotal(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Clamped", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, engine.Return(1, txn.ID, nil, nil))

	// Deleting a returned transaction still credits, but the clamp keeps
	// availability within total_copies
	require.NoError(t, engine.Delete(1, txn.ID))
	assert.Equal(t, 5, bookAvailability(t, db, book.ID))
}

func TestEngine_Return_CreditsArchivedBook(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Archived mid-loan", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// The book is archived while the loan is open
	require.NoError(t, db.Delete(book).Error)

	require.NoError(t, engine.Return(1, txn.ID, nil, nil))
	assert.Equal(t, 5, bookAvailability(t, db, book.ID))
}

func TestEngine_TenantIsolation(t *testing.T) {
	db, engine, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, db, 1, "Mine", 5)
	member := createTestMember(t, db, 1)

	txn, err := engine.Borrow(1, BorrowRequest{
		MemberID: member.ID,
		Lines:    []BorrowLine{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = engine.GetTransaction(2, txn.ID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.ErrorIs(t, engine.Return(2, txn.ID, nil, nil), ErrTransactionNotFound)
	assert.ErrorIs(t, engine.Delete(2, txn.ID), ErrTransactionNotFound)
}
