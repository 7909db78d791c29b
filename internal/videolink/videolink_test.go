package videolink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostAllowList(t *testing.T) {
	checker := NewHTTPChecker(nil)
	ctx := context.Background()

	assert.False(t, checker.Acceptable(ctx, "https://example.com/watch?v=abc"))
	assert.False(t, checker.Acceptable(ctx, "ftp://youtube.com/watch?v=abc"))
	assert.False(t, checker.Acceptable(ctx, "not a url at all ://"))
	assert.False(t, checker.Acceptable(ctx, "https://notyoutube.com/watch?v=abc"))
}

func TestHostAccepted(t *testing.T) {
	assert.True(t, hostAccepted("youtube.com"))
	assert.True(t, hostAccepted("www.youtube.com"))
	assert.True(t, hostAccepted("YOUTU.BE"))
	assert.False(t, hostAccepted("evilyoutube.com"))
}

func TestProbeStatusHandling(t *testing.T) {
	var status int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	// Probe the test server directly through a checker whose allow-list
	// check is bypassed by rewriting the request host via a transport.
	checker := NewHTTPChecker(&http.Client{
		Transport: rewriteTransport{target: server.URL},
	})
	ctx := context.Background()

	status = http.StatusOK
	assert.True(t, checker.Acceptable(ctx, "https://youtu.be/abc"))

	status = http.StatusNotFound
	assert.False(t, checker.Acceptable(ctx, "https://youtu.be/abc"))

	// Server-side faults do not reject the submission.
	status = http.StatusBadGateway
	assert.True(t, checker.Acceptable(ctx, "https://youtu.be/abc"))
}

// rewriteTransport sends every request to the test server regardless of URL.
type rewriteTransport struct {
	target string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	redirected := req.Clone(req.Context())
	redirected.URL.Scheme = "http"
	redirected.URL.Host = t.target[len("http://"):]
	return http.DefaultTransport.RoundTrip(redirected)
}
