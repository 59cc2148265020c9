// Package model defines shared types for the gateway.
package model

import (
	"encoding/json"
	"net/http"
)

// AuthCookieName is the only cookie the gateway sets on its own responses.
const AuthCookieName = "Authorization"

// ProxyRequest is a client request to be forwarded to a backend.
type ProxyRequest struct {
	Method string
	// Path is the backend path with any path parameters already substituted.
	Path string
	// Body is the raw JSON request body, or nil when none was sent.
	Body    []byte
	Cookies []*http.Cookie
}

// UpstreamResponse is a fully read backend response.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
}

// Cookie returns the response cookie with the given name, or nil.
func (r *UpstreamResponse) Cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NormalizedResponse is what the gateway emits for a forwarded call.
// Body is always valid JSON.
type NormalizedResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// AuthCookie is the session token relayed from the user service to the client.
type AuthCookie struct {
	Value string
}

// NewAuthCookie wraps an upstream token value.
func NewAuthCookie(value string) *AuthCookie {
	return &AuthCookie{Value: value}
}

// HTTPCookie renders the cookie with its fixed attributes: HttpOnly, Secure,
// root path and no expiry, so it lives for the browser session.
func (a *AuthCookie) HTTPCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    a.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	}
}

// LoginResult is the outcome of relaying a login to the user service.
type LoginResult struct {
	StatusCode int
	Body       json.RawMessage
	// Cookie is set only for a successful login that returned a token.
	Cookie *AuthCookie
}
