package forwardedchain

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrings_RemoteAddrOnly(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.20.206.46:1234"

	got := Strings(r)
	assert.Equal(t, []string{"10.20.206.46"}, got)
}

func TestStrings_ForwardedForAddsHops(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.20.206.46:1234"
	r.Header.Set("X-Forwarded-For", "10.20.205.24, 192.10.1.1:80")

	got := Strings(r)
	assert.ElementsMatch(t, []string{"10.20.206.46", "10.20.205.24", "192.10.1.1"}, got)
}

func TestStrings_CaseInsensitiveHeaderAndDedup(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.20.206.46:1234"
	r.Header.Set("x-forwarded-for", "10.20.206.46, 1.2.3.4")

	got := Strings(r)
	assert.ElementsMatch(t, []string{"10.20.206.46", "1.2.3.4"}, got)
}

func TestChain_DropsUnparseableEntries(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.20.206.46:1234"
	r.Header.Set("True-Client-IP", "not-an-ip")

	chain := Chain(r)
	assert.Len(t, chain, 1)
	assert.Equal(t, "10.20.206.46", chain[0].String())
}
