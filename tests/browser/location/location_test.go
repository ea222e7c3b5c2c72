package location

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"testing"
)

var visibleClass = regexp.MustCompile(`(^|\s)visible(\s|$)`)

// shareURLPattern matches a share URL carrying pos and the URI-encoded name.
func shareURLPattern(lat, lng float64, name string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("%s.*%s.*%s",
		regexp.QuoteMeta(strconv.FormatFloat(lat, 'f', -1, 64)),
		regexp.QuoteMeta(strconv.FormatFloat(lng, 'f', -1, 64)),
		regexp.QuoteMeta(url.PathEscape(name)),
	))
}

func TestShareLocation_FetchesUserLocation(t *testing.T) {
	d, _ := openSharePage(t)

	button := d.ByID("get-loc-btn")
	d.Click(button)

	d.ExpectCalledTimes(aliasGetCurrentPosition, 1)
	d.Must(d.Expect().Locator(button).ToBeDisabled(), "get location button disabled while locating")

	d.Tick(positionDelay)
	d.Must(d.Expect().Locator(d.ByID("actions")).ToContainText("Location fetched"), "location fetched")
}

func TestShareLocation_SharesLocationURL(t *testing.T) {
	d, pos := openSharePage(t)
	const name = "John Doe"

	d.Type(d.ByID("name-input"), name)
	d.Click(d.ByID("get-loc-btn"))
	d.Tick(positionDelay)
	d.Click(d.ByID("share-loc-btn"))

	shareURL := shareURLPattern(pos.Coords.Latitude, pos.Coords.Longitude, name)
	d.ExpectCalledTimes(aliasSaveToClipboard, 1)
	d.ExpectCalledWithMatch(aliasSaveToClipboard, shareURL)

	d.ExpectCalled(aliasStoreLocation)
	d.ExpectCalledWithMatch(aliasStoreLocation, regexp.MustCompile(regexp.QuoteMeta(name)), shareURL)

	// A second share reuses the stored URL.
	d.Click(d.ByID("share-loc-btn"))
	d.ExpectCalled(aliasGetStoredLocation)

	info := d.ByID("info-message")
	d.Must(d.Expect().Locator(info).ToBeVisible(), "info banner visible after share")
	d.Must(d.Expect().Locator(info).ToHaveClass(visibleClass), "info banner has class visible")

	d.Tick(bannerTimeout)
	d.Must(d.Expect().Locator(info).Not().ToBeVisible(), "info banner hidden after timeout")
}

func TestShareURLPattern(t *testing.T) {
	re := shareURLPattern(37.5, 48.01, "John Doe")
	if !re.MatchString("https://www.bing.com/maps?cp=37.5~48.01&lvl=15&name=John%20Doe") {
		t.Fatalf("%s does not match a share URL", re)
	}
	if re.MatchString("https://www.bing.com/maps?cp=37.5~48.01&name=John Doe") {
		t.Fatalf("%s matched an unencoded name", re)
	}
}
