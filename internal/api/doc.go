// Package api serves the admin HTTP API: login, task generation and
// draining, task inspection and deletion, generation profile CRUD and daily
// word pool uploads. Handlers translate HTTP concerns to queue and store
// operations; every route except login and the health check requires an
// admin bearer token.
package api
