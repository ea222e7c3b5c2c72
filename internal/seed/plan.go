package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a plain fixture password into the stored form.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// BcryptHasher hashes with bcrypt, matching what the app checks at login.
type BcryptHasher struct {
	Cost int
}

// Hash implements PasswordHasher.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// UserRow is a users-table row ready to insert.
type UserRow struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TakeawayRow is a takeaways-table row ready to insert.
type TakeawayRow struct {
	ID        string
	Title     string
	Body      string
	CreatedAt time.Time
}

// Plan is the full content the database holds after seeding.
type Plan struct {
	Users     []UserRow
	Takeaways []TakeawayRow
}

// NewPlan hashes passwords and assigns IDs. Takeaway timestamps are spaced
// one second apart so list order is stable.
func NewPlan(f Fixture, hasher PasswordHasher, now time.Time) (Plan, error) {
	p := Plan{
		Users:     make([]UserRow, 0, len(f.Users)),
		Takeaways: make([]TakeawayRow, 0, len(f.Takeaways)),
	}
	now = now.UTC().Truncate(time.Millisecond)

	for _, u := range f.Users {
		hashed, err := hasher.Hash(u.Password)
		if err != nil {
			return Plan{}, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		p.Users = append(p.Users, UserRow{
			ID:           uuid.NewString(),
			Email:        strings.ToLower(strings.TrimSpace(u.Email)),
			PasswordHash: hashed,
			CreatedAt:    now,
		})
	}
	for i, tk := range f.Takeaways {
		p.Takeaways = append(p.Takeaways, TakeawayRow{
			ID:        uuid.NewString(),
			Title:     tk.Title,
			Body:      tk.Body,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
	}
	return p, nil
}
