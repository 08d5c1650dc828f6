// Package guard implements the per-tenant uniqueness pre-check performed
// before a book, shelf, or member row is inserted or reactivated. Archived
// rows never count as conflicts: an archived book's ISBN may be reused.
package guard

import (
	"gorm.io/gorm"
)

// Checker runs duplicate lookups against a single tenant's active rows.
type Checker struct {
	db *gorm.DB
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// IsDuplicate reports whether an active row of the tenant already holds the
// given value in the named column. Values are compared case- and
// whitespace-insensitively.
func (c *Checker) IsDuplicate(librarianID uint, table, column, value string) (bool, error) {
	return c.isDuplicate(librarianID, table, column, value, 0)
}

// IsDuplicateExcluding is IsDuplicate with one row id exempted, for update
// and restore paths where the row may legitimately keep its own value.
func (c *Checker) IsDuplicateExcluding(librarianID uint, table, column, value string, excludeID uint) (bool, error) {
	return c.isDuplicate(librarianID, table, column, value, excludeID)
}

func (c *Checker) isDuplicate(librarianID uint, table, column, value string, excludeID uint) (bool, error) {
	query := c.db.Table(table).
		Where("librarian_id = ? AND deleted_at IS NULL", librarianID).
		Where("LOWER(TRIM("+column+")) = LOWER(TRIM(?))", value)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
