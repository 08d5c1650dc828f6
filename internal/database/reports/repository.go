// Package reports provides the read-only projections consumed by the
// dashboard: inventory counts, open-line counts, and the due-soon listing.
// Due status is derived per query from due dates; nothing here mutates or
// caches circulation state.
package reports

import (
	"time"

	"gorm.io/gorm"

	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/database/circulation"
	"github.com/shelfward/shelfward/internal/entities"
)

// DueSoonLine is one open transaction line enriched for display.
type DueSoonLine struct {
	TransactionID uint               `json:"transaction_id"`
	LineID        uint               `json:"line_id"`
	BookID        uint               `json:"book_id"`
	BookTitle     string             `json:"book_title"`
	MemberID      uint               `json:"member_id"`
	MemberName    string             `json:"member_name"`
	Quantity      int                `json:"quantity"`
	DueDate       time.Time          `json:"due_date"`
	DaysLeft      int                `json:"days_left"`
	Status        entities.DueStatus `json:"status"`
}

// Repository computes dashboard projections for one tenant at a time.
type Repository struct {
	db     *gorm.DB
	policy config.Circulation
	now    func() time.Time
}

func NewRepository(db *gorm.DB, policy config.Circulation) *Repository {
	if policy.DueSoonWindowDays <= 0 {
		policy.DueSoonWindowDays = config.DefaultDueSoonWindowDays
	}
	return &Repository{db: db, policy: policy, now: time.Now}
}

// SetNowFunc overrides the repository clock. Used by tests.
func (r *Repository) SetNowFunc(now func() time.Time) {
	r.now = now
}

// CountActiveBooks sums total copies over the tenant's active books.
func (r *Repository) CountActiveBooks(librarianID uint) (int64, error) {
	var total *int64
	err := r.db.Model(&entities.Book{}).
		Where("librarian_id = ?", librarianID).
		Select("SUM(total_copies)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// CountActiveMembers counts the tenant's active members.
func (r *Repository) CountActiveMembers(librarianID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Member{}).
		Where("librarian_id = ?", librarianID).
		Count(&count).Error
	return count, err
}

// CountOpenTransactionLines sums quantities over lines whose header is still
// borrowed.
func (r *Repository) CountOpenTransactionLines(librarianID uint) (int64, error) {
	var total *int64
	err := r.db.Model(&entities.TransactionLine{}).
		Joins("JOIN transactions ON transactions.id = transaction_lines.transaction_id").
		Where("transactions.librarian_id = ? AND transactions.status = ?",
			librarianID, entities.TransactionStatusBorrowed).
		Select("SUM(transaction_lines.quantity)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// ListDueSoon returns open lines whose daysLeft is within the due-soon
// window, overdue lines included, enriched with member name and book title.
func (r *Repository) ListDueSoon(librarianID uint) ([]DueSoonLine, error) {
	return r.ListDueSoonAt(librarianID, r.now())
}

// ListDueSoonAt is ListDueSoon evaluated against an explicit "today".
func (r *Repository) ListDueSoonAt(librarianID uint, today time.Time) ([]DueSoonLine, error) {
	lines, err := r.openLines(librarianID)
	if err != nil {
		return nil, err
	}

	result := make([]DueSoonLine, 0, len(lines))
	for _, line := range lines {
		status, daysLeft := circulation.Classify(line.DueDate, today, r.policy.DueSoonWindowDays)
		if status == entities.DueStatusActive {
			continue
		}
		line.DaysLeft = daysLeft
		line.Status = status
		result = append(result, line)
	}
	return result, nil
}

// OpenLineCounts returns the overdue and due-soon line counts for the tenant.
// Feeds the scheduled digest.
func (r *Repository) OpenLineCounts(librarianID uint, today time.Time) (overdue, dueSoon int, err error) {
	lines, err := r.openLines(librarianID)
	if err != nil {
		return 0, 0, err
	}
	for _, line := range lines {
		status, _ := circulation.Classify(line.DueDate, today, r.policy.DueSoonWindowDays)
		switch status {
		case entities.DueStatusOverdue:
			overdue++
		case entities.DueStatusDueSoon:
			dueSoon++
		}
	}
	return overdue, dueSoon, nil
}

// ListLibrarianIDs returns every tenant id. Used by the digest task to fan
// out per tenant.
func (r *Repository) ListLibrarianIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.Librarian{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) openLines(librarianID uint) ([]DueSoonLine, error) {
	var lines []DueSoonLine
	err := r.db.Model(&entities.TransactionLine{}).
		Select(`transaction_lines.id AS line_id,
			transaction_lines.transaction_id,
			transaction_lines.book_id,
			transaction_lines.quantity,
			transaction_lines.due_date,
			books.title AS book_title,
			members.id AS member_id,
			members.first_name || ' ' || members.last_name AS member_name`).
		Joins("JOIN transactions ON transactions.id = transaction_lines.transaction_id").
		Joins("JOIN books ON books.id = transaction_lines.book_id").
		Joins("JOIN members ON members.id = transactions.member_id").
		Where("transactions.librarian_id = ? AND transactions.status = ?",
			librarianID, entities.TransactionStatusBorrowed).
		Order("transaction_lines.due_date ASC").
		Scan(&lines).Error
	return lines, err
}
