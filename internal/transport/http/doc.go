// Package http contains the HTTP handlers for the account overview API.
// Handlers stay thin: they decode and validate requests, call the service
// layer, and render JSON or RFC 7807 problem responses.
package http
