// Package members provides database operations for library members with
// per-tenant contact-number uniqueness among active rows.
package members

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shelfward/shelfward/internal/database/guard"
	"github.com/shelfward/shelfward/internal/entities"
	"github.com/shelfward/shelfward/internal/validate"
)

var (
	ErrNameRequired     = errors.New("member first and last name are required")
	ErrDuplicateContact = errors.New("a member with this contact number already exists")
	ErrMemberNotFound   = errors.New("member not found")
)

// NewMember carries the fields for a member insert.
type NewMember struct {
	FirstName     string
	MiddleName    string
	LastName      string
	ContactNumber string
}

// MemberUpdate carries a partial member edit. Nil fields are left unchanged.
type MemberUpdate struct {
	FirstName     *string
	MiddleName    *string
	LastName      *string
	ContactNumber *string
}

// Repository handles all member database operations.
type Repository struct {
	db    *gorm.DB
	guard *guard.Checker
}

// NewRepository creates a new members repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, guard: guard.NewChecker(db)}
}

// CreateMember validates the contact format and inserts the member after the
// duplicate check against the tenant's active members.
func (r *Repository) CreateMember(librarianID uint, in NewMember) (*entities.Member, error) {
	if in.FirstName == "" || in.LastName == "" {
		return nil, ErrNameRequired
	}
	if err := validate.ContactNumber(in.ContactNumber); err != nil {
		return nil, err
	}
	dup, err := r.guard.IsDuplicate(librarianID, "members", "contact_number", in.ContactNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check contact uniqueness: %w", err)
	}
	if dup {
		return nil, ErrDuplicateContact
	}

	member := &entities.Member{
		LibrarianID:   librarianID,
		FirstName:     in.FirstName,
		MiddleName:    in.MiddleName,
		LastName:      in.LastName,
		ContactNumber: in.ContactNumber,
	}
	if err := r.db.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

// GetMember retrieves an active member of the tenant.
func (r *Repository) GetMember(librarianID, memberID uint) (*entities.Member, error) {
	var member entities.Member
	err := r.db.Where("id = ? AND librarian_id = ?", memberID, librarianID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// UpdateMember applies a partial edit, re-running the contact checks when the
// number changes.
func (r *Repository) UpdateMember(librarianID, memberID uint, in MemberUpdate) (*entities.Member, error) {
	member, err := r.GetMember(librarianID, memberID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		if *in.FirstName == "" {
			return nil, ErrNameRequired
		}
		member.FirstName = *in.FirstName
	}
	if in.MiddleName != nil {
		member.MiddleName = *in.MiddleName
	}
	if in.LastName != nil {
		if *in.LastName == "" {
			return nil, ErrNameRequired
		}
		member.LastName = *in.LastName
	}
	if in.ContactNumber != nil && *in.ContactNumber != member.ContactNumber {
		if err := validate.ContactNumber(*in.ContactNumber); err != nil {
			return nil, err
		}
		dup, err := r.guard.IsDuplicateExcluding(librarianID, "members", "contact_number", *in.ContactNumber, memberID)
		if err != nil {
			return nil, fmt.Errorf("failed to check contact uniqueness: %w", err)
		}
		if dup {
			return nil, ErrDuplicateContact
		}
		member.ContactNumber = *in.ContactNumber
	}

	if err := r.db.Save(member).Error; err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// ListActive returns the tenant's active members ordered by last name.
func (r *Repository) ListActive(librarianID uint) ([]entities.Member, error) {
	var result []entities.Member
	err := r.db.Where("librarian_id = ?", librarianID).
		Order("last_name ASC, first_name ASC").
		Find(&result).Error
	return result, err
}

// SoftDeleteMember archives a member. Transaction history stays intact and
// the contact number becomes reusable by new active members.
func (r *Repository) SoftDeleteMember(librarianID, memberID uint) error {
	result := r.db.Where("librarian_id = ?", librarianID).Delete(&entities.Member{}, memberID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// RestoreMember clears the archive marker. The contact number is re-checked
// against other active members first: reactivation must not reintroduce a
// duplicate that was created while this member was archived.
func (r *Repository) RestoreMember(librarianID, memberID uint) error {
	var member entities.Member
	err := r.db.Unscoped().
		Where("id = ? AND librarian_id = ? AND deleted_at IS NOT NULL", memberID, librarianID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	dup, err := r.guard.IsDuplicateExcluding(librarianID, "members", "contact_number", member.ContactNumber, memberID)
	if err != nil {
		return fmt.Errorf("failed to check contact uniqueness: %w", err)
	}
	if dup {
		return ErrDuplicateContact
	}
	return r.db.Unscoped().Model(&entities.Member{}).
		Where("id = ?", memberID).
		Update("deleted_at", nil).Error
}
