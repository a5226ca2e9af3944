// Package cidr implements the CIDR predicate used by the access-control
// filters: parsing of addr[/mask] text, range membership and client-chain
// evaluation over IPv4 and IPv6 addresses.
//
// It depends on net (plus github.com/pkg/errors for wrapping parse
// errors) and has no knowledge of net/http — callers extract
// the client chain (package forwardedchain) and pass addresses in here.
package cidr
