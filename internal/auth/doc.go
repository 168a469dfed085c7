// Package auth issues and validates the admin API's bearer tokens.
//
// There is a single admin principal. Logging in compares a password with
// the configured bcrypt hash and returns an HS256-signed JWT; the API's
// auth middleware validates that token on every protected route.
package auth
