package models

import "time"

// Transaction categories. Stored as text, but only these two values are
// accepted.
const (
	CategoryNeed = "need"
	CategoryWant = "want"
)

const MaxDescriptionLen = 500

type Transaction struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"-"`
	Amount          float64   `json:"amount"`
	Category        string    `json:"category"`
	Description     string    `json:"description,omitempty"`
	TransactionDate time.Time `json:"transactionDate"`
}

func ValidCategory(c string) bool {
	return c == CategoryNeed || c == CategoryWant
}
