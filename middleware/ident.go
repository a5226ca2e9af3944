package middleware

import (
	"net/http"
	"strings"

	"middleware-gateway/internal/cidr"
)

// IdentFunc projects a request onto a grouping key, controlling which
// requests share a synchronization primitive. WorldIdent yields a single
// global primitive; an IdentFunc returning the client chain yields
// per-client primitives.
type IdentFunc func(r *http.Request) string

// WorldIdent is the default IdentFunc: every request shares one identity.
func WorldIdent(*http.Request) string { return ":world" }

func chainKey(chain []cidr.Addr) string {
	if len(chain) == 0 {
		return ""
	}
	parts := make([]string, len(chain))
	for i, a := range chain {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}
