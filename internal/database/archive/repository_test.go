package archive

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfward/shelfward/internal/database/catalog"
	"github.com/shelfward/shelfward/internal/database/members"
	"github.com/shelfward/shelfward/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_archive_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Librarian{},
		&entities.Book{},
		&entities.AuthorTag{},
		&entities.GenreTag{},
		&entities.Shelf{},
		&entities.Member{},
	)
	require.NoError(t, err)

	catalogRepo := catalog.NewRepository(db)
	membersRepo := members.NewRepository(db)
	repo := NewRepository(db, catalogRepo, membersRepo, catalogRepo)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func archiveBook(t *testing.T, db *gorm.DB, librarianID uint, title, isbn string) *entities.Book {
	book := &entities.Book{LibrarianID: librarianID, Title: title, ISBN: isbn, TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, db.Create(book).Error)
	require.NoError(t, db.Delete(book).Error)
	return book
}

func TestRepository_ListArchivedBooks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	// One still active, two archived at different times
	require.NoError(t, db.Create(&entities.Book{LibrarianID: 1, Title: "Active"}).Error)
	first := archiveBook(t, db, 1, "Archived First", "")
	second := archiveBook(t, db, 1, "Archived Second", "")

	// Force distinct archive timestamps for a deterministic order
	require.NoError(t, db.Unscoped().Model(&entities.Book{}).Where("id = ?", first.ID).
		Update("deleted_at", time.Now().Add(-time.Hour)).Error)

	books, err := repo.ListArchivedBooks(1)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, second.ID, books[0].ID)
	assert.Equal(t, first.ID, books[1].ID)
}

func TestRepository_SearchArchivedBooks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	archiveBook(t, db, 1, "Winter Gardening", "")
	archiveBook(t, db, 1, "Summer Cooking", "9780306406157")

	books, err := repo.SearchArchivedBooks(1, "garden")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Winter Gardening", books[0].Title)

	books, err = repo.SearchArchivedBooks(1, "0306406157")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Summer Cooking", books[0].Title)
}

func TestRepository_ArchivedMembersAndShelves(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	member := &entities.Member{LibrarianID: 1, FirstName: "Maria", LastName: "Santos", ContactNumber: "09171234567"}
	require.NoError(t, db.Create(member).Error)
	require.NoError(t, db.Delete(member).Error)

	shelf := &entities.Shelf{LibrarianID: 1, Name: "A1"}
	require.NoError(t, db.Create(shelf).Error)
	require.NoError(t, db.Delete(shelf).Error)

	memberList, err := repo.ListArchivedMembers(1)
	require.NoError(t, err)
	assert.Len(t, memberList, 1)

	found, err := repo.SearchArchivedMembers(1, "santos")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	shelves, err := repo.ListArchivedShelves(1)
	require.NoError(t, err)
	assert.Len(t, shelves, 1)

	// Other tenants see nothing
	memberList, err = repo.ListArchivedMembers(2)
	require.NoError(t, err)
	assert.Empty(t, memberList)
}

func TestRepository_Restore(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := archiveBook(t, db, 1, "Comeback", "")

	require.NoError(t, repo.Restore(EntityBook, 1, book.ID))
	var restored entities.Book
	require.NoError(t, db.First(&restored, book.ID).Error)
	assert.False(t, restored.DeletedAt.Valid)

	assert.ErrorIs(t, repo.Restore("magazine", 1, book.ID), ErrUnknownEntityType)
}

func TestRepository_Restore_RunsOwningStoreChecks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	archived := archiveBook(t, db, 1, "Original", "9780306406157")
	// The ISBN was reused while the book was archived
	require.NoError(t, db.Create(&entities.Book{LibrarianID: 1, Title: "Replacement", ISBN: "9780306406157"}).Error)

	assert.ErrorIs(t, repo.Restore(EntityBook, 1, archived.ID), catalog.ErrDuplicateISBN)
}
