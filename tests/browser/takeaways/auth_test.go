package takeaways

import "testing"

func TestAuth_Signup(t *testing.T) {
	d, _ := newSeededDriver(t)
	d.Visit("/signup")

	email := d.ByID("auth-email")
	// The first input needs a click before it accepts typing.
	d.Click(email)
	d.Type(email, "test2@example.com")
	d.Type(d.ByID("auth-password"), "password")
	d.Click(d.ByID("auth-submit"))

	// /takeaways requires a session, so landing there proves the signup.
	d.ExpectPathname("/takeaways")
	d.ExpectSessionCookie(true)
}

func TestAuth_Login(t *testing.T) {
	d, _ := newSeededDriver(t)
	d.Visit("/login")

	email := d.ByID("auth-email")
	d.Click(email)
	d.Type(email, "test@example.com")
	d.Type(d.ByID("auth-password"), "testpassword")
	d.Click(d.ByID("auth-submit"))

	d.ExpectPathname("/takeaways")
	d.ExpectSessionCookie(true)
}

func TestAuth_Logout(t *testing.T) {
	d, _ := newSeededDriver(t)
	d.Login()

	d.Click(d.Contains("Logout"))

	d.ExpectPathname("/")
	d.ExpectSessionCookie(false)
}
