package contact

import (
	"regexp"
	"testing"
)

var invalidClass = regexp.MustCompile(`invalid`)

func TestContactForm_Submit(t *testing.T) {
	d := newDriver(t)
	d.Visit("/about")

	d.Type(d.ByID("contact-input-message"), "Hello, World!")
	d.Type(d.ByID("contact-input-name"), "John Doe")

	submit := d.ByID("contact-btn-submit")
	d.Must(d.Expect().Locator(submit).ToBeEnabled(), "submit button enabled before sending")
	d.Must(d.Expect().Locator(submit).ToHaveText("Send Message"), "submit button label before sending")

	// {enter} in the last field submits the form on its own.
	d.Type(d.ByID("contact-input-email"), "test@example.com{enter}")
	d.SubmitForm()

	d.Must(d.Expect().Locator(submit).ToContainText("Sending..."), "submit button shows sending state")
	d.Must(d.Expect().Locator(submit).ToBeDisabled(), "submit button disabled while sending")
}

func TestContactForm_EmptySubmitLeavesButtonUnchanged(t *testing.T) {
	d := newDriver(t)
	d.Visit("/about")

	submit := d.ByID("contact-btn-submit")
	d.Click(submit)

	// Checked once rather than retried: the label reverts on its own later.
	disabled, err := submit.IsDisabled()
	if err != nil {
		t.Fatalf("Failed to read submit button state: %v", err)
	}
	if disabled {
		t.Fatalf("submit button disabled after submitting an empty form")
	}
	text, err := submit.TextContent()
	if err != nil {
		t.Fatalf("Failed to read submit button text: %v", err)
	}
	if text == "Sending..." {
		t.Fatalf("submit button shows %q after submitting an empty form", text)
	}
}

func TestContactForm_BlurMarksEmptyFieldsInvalid(t *testing.T) {
	d := newDriver(t)
	d.Visit("/about")

	for _, id := range []string{"contact-input-message", "contact-input-name", "contact-input-email"} {
		input := d.ByID(id)
		d.Focus(input)
		d.Blur(input)
		d.Must(d.Expect().Locator(d.Parent(input)).ToHaveAttribute("class", invalidClass), id+" parent marked invalid")
	}
}
