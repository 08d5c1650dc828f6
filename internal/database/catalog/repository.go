// Package catalog provides database operations for books, shelves, and their
// author/genre tags. It owns the copy-count invariant
// (0 <= available_copies <= total_copies) and shelf referential integrity:
// archiving a shelf always clears the shelf reference on its books.
package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shelfward/shelfward/internal/database/guard"
	"github.com/shelfward/shelfward/internal/entities"
	"github.com/shelfward/shelfward/internal/validate"
)

var (
	ErrTitleRequired      = errors.New("book title is required")
	ErrInvalidCopies      = errors.New("total copies must be at least 1")
	ErrDuplicateISBN      = errors.New("a book with this isbn already exists")
	ErrDuplicateShelfName = errors.New("a shelf with this name already exists")
	ErrBookNotFound       = errors.New("book not found")
	ErrShelfNotFound      = errors.New("shelf not found")
)

// SortOrder selects the active-listing ordering. Author sorts operate over
// the author-tag join; when a book carries several authors the first matching
// tag wins.
type SortOrder string

const (
	SortTitleAsc   SortOrder = "title_asc"
	SortTitleDesc  SortOrder = "title_desc"
	SortAuthorAsc  SortOrder = "author_asc"
	SortAuthorDesc SortOrder = "author_desc"
)

// ListFilter narrows and orders the active book listing. ShelfID filters to
// one shelf; Unshelved selects the explicit "no shelf" bucket.
type ListFilter struct {
	Sort      SortOrder
	ShelfID   *uint
	Unshelved bool
}

// NewBook carries the fields for a book insert.
type NewBook struct {
	Title       string
	Publisher   string
	Description string
	ISBN        string
	Copies      int
	ShelfID     *uint
	Authors     []string
	Genres      []string
}

// BookUpdate carries a partial book edit. Nil fields are left unchanged.
// ClearShelf moves the book to the unassigned bucket.
type BookUpdate struct {
	Title       *string
	Publisher   *string
	Description *string
	ISBN        *string
	TotalCopies *int
	ShelfID     *uint
	ClearShelf  bool
	Authors     *[]string
	Genres      *[]string
}

// Repository handles all catalog database operations.
type Repository struct {
	db    *gorm.DB
	guard *guard.Checker
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, guard: guard.NewChecker(db)}
}

// CreateBook validates and inserts a book with its author and genre tags.
// AvailableCopies starts equal to TotalCopies.
func (r *Repository) CreateBook(librarianID uint, in NewBook) (*entities.Book, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Copies < 1 {
		return nil, ErrInvalidCopies
	}
	if err := validate.ISBN(in.ISBN); err != nil {
		return nil, err
	}
	if in.ISBN != "" {
		dup, err := r.guard.IsDuplicate(librarianID, "books", "isbn", in.ISBN)
		if err != nil {
			return nil, fmt.Errorf("failed to check isbn uniqueness: %w", err)
		}
		if dup {
			return nil, ErrDuplicateISBN
		}
	}
	if in.ShelfID != nil {
		if _, err := r.GetShelf(librarianID, *in.ShelfID); err != nil {
			return nil, err
		}
	}

	book := &entities.Book{
		LibrarianID:     librarianID,
		Title:           in.Title,
		Publisher:       in.Publisher,
		Description:     in.Description,
		ISBN:            in.ISBN,
		TotalCopies:     in.Copies,
		AvailableCopies: in.Copies,
		ShelfID:         in.ShelfID,
	}
	for _, name := range in.Authors {
		book.Authors = append(book.Authors, entities.AuthorTag{Name: name})
	}
	for _, name := range in.Genres {
		book.Genres = append(book.Genres, entities.GenreTag{Name: name})
	}

	if err := r.db.Create(book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// UpdateBook applies a partial edit. Changing TotalCopies to N recomputes
// available_copies as max(0, available + (N - oldTotal)), preserving the
// number of copies currently out on loan, then clamps it to N.
func (r *Repository) UpdateBook(librarianID, bookID uint, in BookUpdate) (*entities.Book, error) {
	book, err := r.getActiveBook(r.db, librarianID, bookID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, ErrTitleRequired
		}
		book.Title = *in.Title
	}
	if in.Publisher != nil {
		book.Publisher = *in.Publisher
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.ISBN != nil && *in.ISBN != book.ISBN {
		if err := validate.ISBN(*in.ISBN); err != nil {
			return nil, err
		}
		if *in.ISBN != "" {
			dup, err := r.guard.IsDuplicateExcluding(librarianID, "books", "isbn", *in.ISBN, bookID)
			if err != nil {
				return nil, fmt.Errorf("failed to check isbn uniqueness: %w", err)
			}
			if dup {
				return nil, ErrDuplicateISBN
			}
		}
		book.ISBN = *in.ISBN
	}
	if in.TotalCopies != nil {
		if *in.TotalCopies < 1 {
			return nil, ErrInvalidCopies
		}
		delta := *in.TotalCopies - book.TotalCopies
		available := book.AvailableCopies + delta
		if available < 0 {
			available = 0
		}
		if available > *in.TotalCopies {
			available = *in.TotalCopies
		}
		book.TotalCopies = *in.TotalCopies
		book.AvailableCopies = available
	}
	if in.ClearShelf {
		book.ShelfID = nil
	} else if in.ShelfID != nil {
		if _, err := r.GetShelf(librarianID, *in.ShelfID); err != nil {
			return nil, err
		}
		book.ShelfID = in.ShelfID
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Authors", "Genres", "Shelf").Save(book).Error; err != nil {
			return err
		}
		if in.Authors != nil {
			if err := replaceTags(tx, bookID, *in.Authors, &entities.AuthorTag{}); err != nil {
				return err
			}
		}
		if in.Genres != nil {
			if err := replaceTags(tx, bookID, *in.Genres, &entities.GenreTag{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return r.BookWithTags(librarianID, bookID)
}

func replaceTags(tx *gorm.DB, bookID uint, names []string, model any) error {
	if err := tx.Where("book_id = ?", bookID).Delete(model).Error; err != nil {
		return err
	}
	switch model.(type) {
	case *entities.AuthorTag:
		for _, name := range names {
			if err := tx.Create(&entities.AuthorTag{BookID: bookID, Name: name}).Error; err != nil {
				return err
			}
		}
	case *entities.GenreTag:
		for _, name := range names {
			if err := tx.Create(&entities.GenreTag{BookID: bookID, Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// BookWithTags retrieves an active book with authors, genres, and shelf
// preloaded. This is the one place the tag join shape lives.
func (r *Repository) BookWithTags(librarianID, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Authors").Preload("Genres").Preload("Shelf").
		Where("id = ? AND librarian_id = ?", bookID, librarianID).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// SoftDeleteBook archives a book. It disappears from listings, availability
// checks, and borrow eligibility; its transaction history stays intact.
func (r *Repository) SoftDeleteBook(librarianID, bookID uint) error {
	result := r.db.Where("librarian_id = ?", librarianID).Delete(&entities.Book{}, bookID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// RestoreBook clears the archive marker. The ISBN is re-checked against
// active books so reactivation cannot introduce a duplicate.
func (r *Repository) RestoreBook(librarianID, bookID uint) error {
	var book entities.Book
	err := r.db.Unscoped().
		Where("id = ? AND librarian_id = ? AND deleted_at IS NOT NULL", bookID, librarianID).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	if book.ISBN != "" {
		dup, err := r.guard.IsDuplicateExcluding(librarianID, "books", "isbn", book.ISBN, bookID)
		if err != nil {
			return fmt.Errorf("failed to check isbn uniqueness: %w", err)
		}
		if dup {
			return ErrDuplicateISBN
		}
	}
	return r.db.Unscoped().Model(&entities.Book{}).
		Where("id = ?", bookID).
		Update("deleted_at", nil).Error
}

// DeleteBookPermanently hard-deletes a book and its tags. This is an
// administrative correction, not part of normal archival.
func (r *Repository) DeleteBookPermanently(librarianID, bookID uint) error {
	var book entities.Book
	err := r.db.Unscoped().
		Where("id = ? AND librarian_id = ?", bookID, librarianID).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.AuthorTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.GenreTag{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&entities.Book{}, bookID).Error
	})
}

// ListActive returns the tenant's active books with tags preloaded,
// filtered and ordered per the ListFilter.
func (r *Repository) ListActive(librarianID uint, filter ListFilter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{}).
		Preload("Authors").Preload("Genres").Preload("Shelf").
		Where("books.librarian_id = ?", librarianID)

	if filter.Unshelved {
		query = query.Where("books.shelf_id IS NULL")
	} else if filter.ShelfID != nil {
		query = query.Where("books.shelf_id = ?", *filter.ShelfID)
	}

	switch filter.Sort {
	case SortTitleDesc:
		query = query.Order("books.title DESC")
	case SortAuthorAsc:
		query = query.
			Joins("LEFT JOIN author_tags ON author_tags.book_id = books.id").
			Group("books.id").
			Order("MIN(author_tags.name) ASC")
	case SortAuthorDesc:
		query = query.
			Joins("LEFT JOIN author_tags ON author_tags.book_id = books.id").
			Group("books.id").
			Order("MIN(author_tags.name) DESC")
	default:
		query = query.Order("books.title ASC")
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, err
}

// CreateShelf validates the shelf label and inserts it after the duplicate
// check on the name within the tenant.
func (r *Repository) CreateShelf(librarianID uint, name string) (*entities.Shelf, error) {
	if err := validate.ShelfName(name); err != nil {
		return nil, err
	}
	dup, err := r.guard.IsDuplicate(librarianID, "shelves", "name", name)
	if err != nil {
		return nil, fmt.Errorf("failed to check shelf name uniqueness: %w", err)
	}
	if dup {
		return nil, ErrDuplicateShelfName
	}

	shelf := &entities.Shelf{LibrarianID: librarianID, Name: name}
	if err := r.db.Create(shelf).Error; err != nil {
		return nil, fmt.Errorf("failed to create shelf: %w", err)
	}
	return shelf, nil
}

// GetShelf retrieves an active shelf of the tenant.
func (r *Repository) GetShelf(librarianID, shelfID uint) (*entities.Shelf, error) {
	var shelf entities.Shelf
	err := r.db.Where("id = ? AND librarian_id = ?", shelfID, librarianID).First(&shelf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, err
	}
	return &shelf, nil
}

// ListShelves returns the tenant's active shelves ordered by name.
func (r *Repository) ListShelves(librarianID uint) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	err := r.db.Where("librarian_id = ?", librarianID).Order("name ASC").Find(&shelves).Error
	return shelves, err
}

// SoftDeleteShelf archives a shelf and clears the shelf reference on every
// book still pointing at it, archived books included, so a later restore
// cannot bring back a reference to the archived shelf. Both steps run in one
// database transaction.
func (r *Repository) SoftDeleteShelf(librarianID, shelfID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("librarian_id = ?", librarianID).Delete(&entities.Shelf{}, shelfID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrShelfNotFound
		}
		return tx.Unscoped().Model(&entities.Book{}).
			Where("shelf_id = ? AND librarian_id = ?", shelfID, librarianID).
			Update("shelf_id", nil).Error
	})
}

// RestoreShelf clears the archive marker after re-checking the name against
// active shelves.
func (r *Repository) RestoreShelf(librarianID, shelfID uint) error {
	var shelf entities.Shelf
	err := r.db.Unscoped().
		Where("id = ? AND librarian_id = ? AND deleted_at IS NOT NULL", shelfID, librarianID).
		First(&shelf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShelfNotFound
		}
		return err
	}
	dup, err := r.guard.IsDuplicateExcluding(librarianID, "shelves", "name", shelf.Name, shelfID)
	if err != nil {
		return fmt.Errorf("failed to check shelf name uniqueness: %w", err)
	}
	if dup {
		return ErrDuplicateShelfName
	}
	return r.db.Unscoped().Model(&entities.Shelf{}).
		Where("id = ?", shelfID).
		Update("deleted_at", nil).Error
}

func (r *Repository) getActiveBook(db *gorm.DB, librarianID, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := db.Where("id = ? AND librarian_id = ?", bookID, librarianID).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}
