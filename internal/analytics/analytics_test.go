package analytics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLayout(t *testing.T) {
	req := requestKey("client-a", "/hello")
	assert.Equal(t, "mockendpoint:req:client-a:/hello", req)

	// FetchClientAnalytics recovers the path by trimming the prefix.
	prefix := requestKey("client-a", "")
	assert.Equal(t, "/hello", strings.TrimPrefix(req, prefix))

	assert.Equal(t, "mockendpoint:err:client-a:/hello", errorKey("client-a", "/hello"))
	assert.Equal(t, "mockendpoint:lat:client-a:/hello", latencyKey("client-a", "/hello"))
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientKey(r))

	r.Header.Set("X-Client-ID", "load-gen-7")
	assert.Equal(t, "load-gen-7", clientKey(r))
}
