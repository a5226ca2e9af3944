// Package forwardedchain builds the set of client-associated addresses for
// an incoming HTTP request: RemoteAddr plus whatever True-Client-IP and
// X-Forwarded-For headers report.
package forwardedchain
