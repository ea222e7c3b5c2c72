package browser

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kuitang/e2e-suites/internal/urlutil"
)

const (
	probeDialTimeout = 250 * time.Millisecond
	probeHTTPTimeout = 800 * time.Millisecond
)

// Probe reports whether an app answers at baseURL: a TCP dial to its host,
// then a GET of the root page. Any HTTP status counts as reachable.
func Probe(ctx context.Context, baseURL string) error {
	host, err := urlutil.DialAddress(baseURL)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: probeDialTimeout}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("dial %s: %w", host, err)
	}
	_ = conn.Close()

	reqCtx, cancel := context.WithTimeout(ctx, probeHTTPTimeout)
	defer cancel()
	target := urlutil.BuildAbsolute(baseURL, "/")
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	_ = resp.Body.Close()
	return nil
}
