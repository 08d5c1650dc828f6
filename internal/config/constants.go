package config

// Default paths and circulation policy constants
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./shelfward.db"

	// DefaultLoanPeriodDays is how long a borrowed book is out before it is due
	DefaultLoanPeriodDays = 14

	// DefaultDueSoonWindowDays is the daysLeft threshold below which an open
	// line is reported as due-soon
	DefaultDueSoonWindowDays = 7
)
