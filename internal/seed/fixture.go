// Package seed resets the database of the app under test to a known fixture
// state. It is the seedDatabase task run before every data-dependent test.
package seed

import (
	"fmt"
	"strings"

	"github.com/kuitang/e2e-suites/fixtures"
	"github.com/kuitang/e2e-suites/internal/errs"
)

// Fixture is the decoded seed file.
type Fixture struct {
	Users     []User     `json:"users"`
	Takeaways []Takeaway `json:"takeaways"`
}

// User is a login the suites can authenticate with. Password is plain text;
// it is hashed before it reaches the database.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Takeaway is one row of the takeaways list.
type Takeaway struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// LoadFixture reads and validates the seed fixture name from dir, falling
// back to the embedded fixtures.
func LoadFixture(dir, name string) (Fixture, error) {
	var f Fixture
	if err := fixtures.Decode(dir, name, &f); err != nil {
		return Fixture{}, errs.Wrap(errs.InvalidArgument, "load seed fixture", err)
	}
	if err := f.Validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// Validate rejects fixtures the app could not have produced itself.
func (f Fixture) Validate() error {
	seen := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || !strings.Contains(email, "@") {
			return errs.New(errs.InvalidArgument, fmt.Sprintf("seed fixture: users[%d] has an invalid email %q", i, u.Email))
		}
		if u.Password == "" {
			return errs.New(errs.InvalidArgument, fmt.Sprintf("seed fixture: users[%d] has an empty password", i))
		}
		if _, dup := seen[email]; dup {
			return errs.New(errs.InvalidArgument, fmt.Sprintf("seed fixture: duplicate user %q", u.Email))
		}
		seen[email] = struct{}{}
	}
	for i, tk := range f.Takeaways {
		if strings.TrimSpace(tk.Title) == "" {
			return errs.New(errs.InvalidArgument, fmt.Sprintf("seed fixture: takeaways[%d] has an empty title", i))
		}
	}
	return nil
}
