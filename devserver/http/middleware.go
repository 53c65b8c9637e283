package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/lakehouselib/lakehouse/devserver"
)

// TokenVerifier resolves bearer tokens.
type TokenVerifier interface {
	VerifyToken(token string) (devserver.Identity, error)
}

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the
// caller's identity in the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			id, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(devserver.WithIdentity(r.Context(), id)))
		})
	}
}

// SignatureVerifier checks signed URLs.
type SignatureVerifier interface {
	VerifySignature(method, path string, query url.Values) error
}

// SignatureMiddleware admits requests whose URL carries a valid signature
// for their method and path.
func SignatureMiddleware(verifier SignatureVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.VerifySignature(r.Method, r.URL.Path, r.URL.Query()); err != nil {
				WriteError(w, http.StatusForbidden, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
