package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/zkrest/zkrest/server/internal/api"
)

// APIKey returns HTTP middleware that enforces API key authentication.
//
// Behaviour:
//   - If mode != "apikey" or key() == "", all requests are allowed (pass-through).
//   - Otherwise the value of header must equal key().
//   - A missing, empty, or incorrect key is answered with 401 and an
//     {"Status":"ERROR","Error":...} body; the operation never runs.
//
// key is called on every request so a reloaded configuration takes effect
// without rebuilding the handler.
func APIKey(mode, header string, key func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mode != "apikey" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			want := key()
			if want == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(header)
			if got == "" {
				api.JSONError(w, http.StatusUnauthorized, "missing api key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				api.JSONError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
