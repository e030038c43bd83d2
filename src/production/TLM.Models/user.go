package tlmmodels

import "time"

// User represents a user account. Password holds a bcrypt hash, never
// plaintext, and is excluded from JSON output.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
