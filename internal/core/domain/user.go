package domain

// UserID identifies an authenticated account. Accounts are owned by the auth
// collaborator; the hub only carries the ID inside tokens.
type UserID string
