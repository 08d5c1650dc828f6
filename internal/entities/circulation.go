package entities

import (
	"time"

	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionStatusBorrowed TransactionStatus = "borrowed"
	TransactionStatusReturned TransactionStatus = "returned"
)

// DueStatus classifies an open transaction line relative to its due date.
// It is always derived at query time, never stored.
type DueStatus string

const (
	DueStatusActive  DueStatus = "active"
	DueStatusDueSoon DueStatus = "due_soon"
	DueStatusOverdue DueStatus = "overdue"
)

// Librarian is the tenant: every other row belongs to exactly one librarian.
type Librarian struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;size:100" json:"username"`
	FirstName        string     `gorm:"size:100" json:"first_name"`
	LastName         string     `gorm:"size:100" json:"last_name"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	LibrarianID     uint           `gorm:"index" json:"librarian_id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Publisher       string         `gorm:"size:256" json:"publisher,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	TotalCopies     int            `json:"total_copies"`
	AvailableCopies int            `json:"available_copies"`
	ShelfID         *uint          `gorm:"index" json:"shelf_id,omitempty"` // nil means unassigned
	Shelf           *Shelf         `gorm:"foreignKey:ShelfID" json:"shelf,omitempty"`
	Authors         []AuthorTag    `gorm:"foreignKey:BookID" json:"authors,omitempty"`
	Genres          []GenreTag     `gorm:"foreignKey:BookID" json:"genres,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// AuthorTag is a free-text author name attached to a book.
// Tags live and die with their book and are never archived on their own.
type AuthorTag struct {
	BookID uint   `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	Name   string `gorm:"primaryKey;size:256" json:"name"`
}

type GenreTag struct {
	BookID uint   `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	Name   string `gorm:"primaryKey;size:100" json:"name"`
}

type Shelf struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	LibrarianID uint           `gorm:"index" json:"librarian_id"`
	Name        string         `gorm:"index;size:10" json:"name"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Member struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	LibrarianID   uint           `gorm:"index" json:"librarian_id"`
	FirstName     string         `gorm:"size:100" json:"first_name"`
	MiddleName    string         `gorm:"size:100" json:"middle_name,omitempty"`
	LastName      string         `gorm:"size:100" json:"last_name"`
	ContactNumber string         `gorm:"index;size:11" json:"contact_number"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Transaction is a borrow event: one header per member visit, one line per
// book. Header and lines are created and destroyed together.
type Transaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	LibrarianID uint              `gorm:"index" json:"librarian_id"`
	MemberID    uint              `gorm:"index" json:"member_id"`
	Member      *Member           `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Status      TransactionStatus `gorm:"size:20;default:'borrowed'" json:"status"`
	BorrowedAt  time.Time         `json:"borrowed_at"`
	ReturnedAt  *time.Time        `json:"returned_at,omitempty"`
	Remarks     string            `gorm:"size:512" json:"remarks,omitempty"`
	Lines       []TransactionLine `gorm:"foreignKey:TransactionID" json:"lines,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type TransactionLine struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"index" json:"transaction_id"`
	BookID        uint      `gorm:"index" json:"book_id"`
	Book          *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Quantity      int       `json:"quantity"`
	DueDate       time.Time `json:"due_date"`
}

func (Librarian) TableName() string {
	return "librarians"
}

func (Book) TableName() string {
	return "books"
}

func (AuthorTag) TableName() string {
	return "author_tags"
}

func (GenreTag) TableName() string {
	return "genre_tags"
}

func (Shelf) TableName() string {
	return "shelves"
}

func (Member) TableName() string {
	return "members"
}

func (Transaction) TableName() string {
	return "transactions"
}

func (TransactionLine) TableName() string {
	return "transaction_lines"
}
