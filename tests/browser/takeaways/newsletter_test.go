package takeaways

import (
	"net/http"
	"testing"

	"github.com/kuitang/e2e-suites/internal/browser"
)

func subscribe(d *browser.Driver, email string) {
	d.Type(d.ByID("newsletter-email"), email)
	d.Click(d.ByID("newsletter-submit"))
}

func TestNewsletter_Success(t *testing.T) {
	d, _ := newSeededDriver(t)

	// The pattern also covers the query string the app appends.
	sub := d.Intercept(http.MethodPost, "/newsletter*", browser.JSONReply(map[string]int{"status": http.StatusCreated}))
	d.Visit("/")
	subscribe(d, "test@example.com")

	sub.Wait()
	d.Must(d.Expect().Locator(d.Contains("Thanks for signing up")).ToBeVisible(), "success message shown")
}

func TestNewsletter_ValidationError(t *testing.T) {
	d, _ := newSeededDriver(t)

	sub := d.Intercept(http.MethodPost, "/newsletter*", browser.JSONReply(map[string]string{"message": "Email exists already"}))
	d.Visit("/")
	subscribe(d, "test@example.com")

	sub.Wait()
	d.Must(d.Expect().Locator(d.Contains("Email exists already")).ToBeVisible(), "error message shown verbatim")
}

func TestNewsletter_APICreatesContact(t *testing.T) {
	d, _ := newSeededDriver(t)

	resp := d.Request(http.MethodPost, "/newsletter", browser.RequestOptions{
		Form: map[string]string{"email": "test@example.com"},
	})
	if resp.Status != http.StatusCreated {
		t.Fatalf("POST /newsletter: expected status %d, got %d (body %q)", http.StatusCreated, resp.Status, resp.Body)
	}
}
