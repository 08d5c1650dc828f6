// Package archive provides the uniform archived-row queries shared by books,
// members, and shelves. The archive marker is the deleted_at timestamp, so
// listings can order by "when archived". This package only reads and flips
// markers; entity-specific cascade and reactivation rules live with the
// owning stores and are reached through the Restorer dispatch.
package archive

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfward/shelfward/internal/entities"
)

// EntityType names an archivable entity.
type EntityType string

const (
	EntityBook   EntityType = "book"
	EntityMember EntityType = "member"
	EntityShelf  EntityType = "shelf"
)

var ErrUnknownEntityType = errors.New("unknown archive entity type")

// BookRestorer, MemberRestorer, and ShelfRestorer are implemented by the
// owning stores; each runs its own reactivation checks before clearing the
// marker.
type (
	BookRestorer interface {
		RestoreBook(librarianID, bookID uint) error
	}
	MemberRestorer interface {
		RestoreMember(librarianID, memberID uint) error
	}
	ShelfRestorer interface {
		RestoreShelf(librarianID, shelfID uint) error
	}
)

// Repository serves the archive screen: per-type archived listings, search,
// and restore dispatch.
type Repository struct {
	db      *gorm.DB
	books   BookRestorer
	members MemberRestorer
	shelves ShelfRestorer
}

func NewRepository(db *gorm.DB, books BookRestorer, members MemberRestorer, shelves ShelfRestorer) *Repository {
	return &Repository{db: db, books: books, members: members, shelves: shelves}
}

// ListArchivedBooks returns the tenant's archived books, most recently
// archived first.
func (r *Repository) ListArchivedBooks(librarianID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.archivedScope(librarianID).
		Preload("Authors").Preload("Genres").
		Find(&books).Error
	return books, err
}

// ListArchivedMembers returns the tenant's archived members, most recently
// archived first.
func (r *Repository) ListArchivedMembers(librarianID uint) ([]entities.Member, error) {
	var result []entities.Member
	err := r.archivedScope(librarianID).Find(&result).Error
	return result, err
}

// ListArchivedShelves returns the tenant's archived shelves, most recently
// archived first.
func (r *Repository) ListArchivedShelves(librarianID uint) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	err := r.archivedScope(librarianID).Find(&shelves).Error
	return shelves, err
}

// SearchArchivedBooks filters archived books by substring over title,
// publisher, and ISBN.
func (r *Repository) SearchArchivedBooks(librarianID uint, text string) ([]entities.Book, error) {
	pattern := "%" + text + "%"
	var books []entities.Book
	err := r.archivedScope(librarianID).
		Preload("Authors").Preload("Genres").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(publisher) LIKE LOWER(?) OR isbn LIKE ?", pattern, pattern, pattern).
		Find(&books).Error
	return books, err
}

// SearchArchivedMembers filters archived members by substring over names and
// contact number.
func (r *Repository) SearchArchivedMembers(librarianID uint, text string) ([]entities.Member, error) {
	pattern := "%" + text + "%"
	var result []entities.Member
	err := r.archivedScope(librarianID).
		Where("LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR contact_number LIKE ?", pattern, pattern, pattern).
		Find(&result).Error
	return result, err
}

// SearchArchivedShelves filters archived shelves by substring over the name.
func (r *Repository) SearchArchivedShelves(librarianID uint, text string) ([]entities.Shelf, error) {
	pattern := "%" + text + "%"
	var shelves []entities.Shelf
	err := r.archivedScope(librarianID).
		Where("LOWER(name) LIKE LOWER(?)", pattern).
		Find(&shelves).Error
	return shelves, err
}

// Restore dispatches to the owning store so entity-specific reactivation
// checks always run.
func (r *Repository) Restore(entityType EntityType, librarianID, id uint) error {
	switch entityType {
	case EntityBook:
		return r.books.RestoreBook(librarianID, id)
	case EntityMember:
		return r.members.RestoreMember(librarianID, id)
	case EntityShelf:
		return r.shelves.RestoreShelf(librarianID, id)
	default:
		return ErrUnknownEntityType
	}
}

func (r *Repository) archivedScope(librarianID uint) *gorm.DB {
	return r.db.Unscoped().
		Where("librarian_id = ? AND deleted_at IS NOT NULL", librarianID).
		Order("deleted_at DESC")
}
