package videolink

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Checker decides whether a submitted video URL is acceptable.
type Checker interface {
	Acceptable(ctx context.Context, rawURL string) bool
}

// acceptedHosts are the video hosts submissions may reference.
var acceptedHosts = []string{
	"youtube.com",
	"youtu.be",
	"twitch.tv",
	"drive.google.com",
}

// HTTPChecker validates a video URL's host against the allow-list and
// probes the link for reachability. Probe failures only fail the check when
// the server answers with a definitive client error; network-level faults
// give the submitter the benefit of the doubt.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker constructs an HTTPChecker. A nil client gets a default
// with a short timeout.
func NewHTTPChecker(client *http.Client) *HTTPChecker {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPChecker{client: client}
}

// Acceptable implements Checker.
func (c *HTTPChecker) Acceptable(ctx context.Context, rawURL string) bool {
	parsed, errParse := url.Parse(strings.TrimSpace(rawURL))
	if errParse != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	if !hostAccepted(parsed.Hostname()) {
		return false
	}

	req, errRequest := http.NewRequestWithContext(ctx, http.MethodHead, parsed.String(), nil)
	if errRequest != nil {
		return false
	}
	resp, errDo := c.client.Do(req)
	if errDo != nil {
		return true
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400 || resp.StatusCode >= 500
}

// hostAccepted matches a hostname against the allow-list, including
// subdomains such as www.youtube.com.
func hostAccepted(host string) bool {
	host = strings.ToLower(host)
	for _, accepted := range acceptedHosts {
		if host == accepted || strings.HasSuffix(host, "."+accepted) {
			return true
		}
	}
	return false
}
