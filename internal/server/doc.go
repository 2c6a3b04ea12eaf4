// Package server exposes a goHash Engine over HTTP.
//
// Routes:
//
//	POST /v1/hash           {"password"|"password_base64"}         -> {"hash"}
//	POST /v1/verify         {"hash", "password"|"password_base64"} -> {"match"}
//	POST /v1/needs-upgrade  {"hash"}                               -> {"needs_upgrade"}
//	GET  /health
//	GET  /metrics           Prometheus text, when enabled
//
// A wrong password is a 200 with "match": false. Malformed hashes and bad bodies
// are 400. A stored hash whose cost exceeds the verification caps is 422. An
// exhausted memory budget is 503 with Retry-After, and any other failure is 503
// or 500 depending on whether retrying can help. Every /v1 request runs under
// Config.RequestTimeout. Passwords never appear in logs or error bodies.
package server
