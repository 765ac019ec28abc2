package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// csrfMiddleware rejects unsafe requests without a valid token. Requests are
// marked plaintext unless secure is set so that the Referer check matches a
// server listening on plain HTTP.
func csrfMiddleware(key []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)

	return func(c *gin.Context) {
		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, r)
		if !passed {
			c.Abort()
		}
	}
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Form expired or invalid. Go back, reload the page and try again.", http.StatusForbidden)
}
