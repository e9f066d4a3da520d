// Package handler serves the admin API of modi-server.
//
// All endpoints are read-only and answer with the Response envelope.
// Sensitive property values are masked unless the request asks for
// ?reveal=true.
package handler
