package contact

import "testing"

func TestNavigation_BetweenPages(t *testing.T) {
	d := newDriver(t)
	d.Visit("/")

	d.Click(d.ByID("header-about-link"))
	d.ExpectPathname("/about")

	d.Back()
	d.ExpectPathname("/")

	d.Click(d.ByID("header-about-link"))
	d.Click(d.ByID("header-home-link"))
	d.ExpectPathname("/")
}
