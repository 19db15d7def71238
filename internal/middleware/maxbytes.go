package middleware

import "net/http"

// MaxBytes limits the size of request bodies to n bytes.
//
// http.MaxBytesReader wraps the body so that reading past the limit returns
// an error (and closes the connection) instead of buffering an arbitrarily
// large upload in memory. Handlers that json.Decode an oversized body get a
// decode error and respond 400 through their normal error path.
//
// The explanation service sets this to 10 MB — code snippets are text, and
// anything bigger than that is not a snippet.
func MaxBytes(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
