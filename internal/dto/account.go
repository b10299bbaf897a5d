package dto

import "time"

// AccountSummary is the minimal projection returned by register and login.
type AccountSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AccountResponse is the full public account record. The password digest
// is never part of any projection.
type AccountResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAccountsResponse wraps the account listing.
type ListAccountsResponse struct {
	Items []AccountResponse `json:"items"`
}
