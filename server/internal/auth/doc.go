// Package auth provides API key authentication for the REST API and
// WebSocket sessions.
//
// APIKey(mode, header, key) wraps an http.Handler. When mode is "apikey" and a
// key is configured, requests must carry the key in the named header, or in
// the api_key query parameter for browser WebSocket clients that cannot set
// headers. Any other mode passes requests through.
package auth
