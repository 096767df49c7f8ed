package handler

import "net/http"

// CORS headers sent on every response so browsers can call the function
// from any origin.
const (
	allowOrigin  = "*"
	allowHeaders = "Content-Type"
	allowMethods = "POST, OPTIONS"
)

func setResponseHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Allow-Methods", allowMethods)
}
