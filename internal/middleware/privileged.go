package middleware

import "net/http"

// RequireCaller lets the request through only when the authenticated caller
// is account. It must run after Auth.
func RequireCaller(account string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if caller != account {
				http.Error(w, "privileged operation", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
