package middleware

import (
	"io"
	"net/http"
)

// MaxDrainBytes caps how much of an unread request body is drained after the handler returns.
const MaxDrainBytes = 1 << 20

// DrainAndCloseRequest drains what the handler left unread in the request body (up to
// MaxDrainBytes) and closes it, so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, MaxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
