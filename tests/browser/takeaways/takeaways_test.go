package takeaways

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/kuitang/e2e-suites/internal/browser"
)

func TestTakeaways_ListsSeededItems(t *testing.T) {
	d, seeded := newSeededDriver(t)
	if seeded.Takeaways != 2 {
		t.Fatalf("seed fixture has %d takeaways, this test expects 2", seeded.Takeaways)
	}

	d.Visit("/")
	d.Must(d.Expect().Locator(d.ByID("takeaway-item")).ToHaveCount(seeded.Takeaways), "takeaway items listed")
}

func TestTakeaways_Create(t *testing.T) {
	d, _ := newSeededDriver(t)

	create := d.Intercept(http.MethodPost, "/takeaways/new*", browser.TextReply("success"))
	d.Login()
	d.Visit("/takeaways/new")

	title := d.ByID("title")
	d.Click(title)
	d.Type(title, "TestTitle1")
	d.Type(d.ByID("body"), "TestBody1")
	d.Click(d.ByID("create-takeaway"))

	req := create.Wait()
	if !regexp.MustCompile(`TestTitle1.*TestBody1`).MatchString(req.Body) {
		t.Fatalf("create request body %q does not carry title and body", req.Body)
	}
}
