package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

type Keys struct {
	Public []string
	Admin  []string
}

func readAuth(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func hasKey(given string, set []string) bool {
	if given == "" {
		return false
	}
	found := 0
	for _, k := range set {
		found |= subtle.ConstantTimeCompare([]byte(k), []byte(given))
	}
	return found == 1
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// RequireAny allows requests that present either a public or admin key.
// If no keys are configured, it allows all requests (handy for local dev).
func RequireAny(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Public) > 0 || len(keys.Admin) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := readAuth(r)
			if hasKey(key, keys.Public) || hasKey(key, keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}

// RequireAdmin only permits requests that present an admin key: 401 without
// a key, 403 with a non-admin one. If no admin keys are configured, it allows
// all requests (dev).
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Admin) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := readAuth(r)
			switch {
			case hasKey(key, keys.Admin):
				next.ServeHTTP(w, r)
			case key == "":
				deny(w, http.StatusUnauthorized, "unauthorized")
			default:
				deny(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}
