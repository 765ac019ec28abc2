package web

import (
	"bufio"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// Session keys.
const (
	keyFlash     = "flash"
	keyFlashKind = "flash_kind"
	keyTitle     = "form_title"
	keyAuthor    = "form_author"
	keyYear      = "form_year"
)

const createSessions = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// newSessionManager creates the sessions table in db if needed and returns a
// session manager storing its data there.
func newSessionManager(db *sql.DB, secure bool) (*scs.SessionManager, *sqlite3store.SQLite3Store, error) {
	if _, err := db.Exec(createSessions); err != nil {
		return nil, nil, fmt.Errorf("create sessions table: %w", err)
	}

	store := sqlite3store.NewWithCleanupInterval(db, 30*time.Minute)
	sm := scs.New()
	sm.Store = store
	sm.Lifetime = 12 * time.Hour
	sm.Cookie.Name = "pustaka_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	return sm, store, nil
}

// sessionWriter commits the session and writes its cookie before the first
// byte of the response goes out.
type sessionWriter struct {
	gin.ResponseWriter
	sm          *scs.SessionManager
	request     *http.Request
	wroteHeader bool
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

func (w *sessionWriter) commit() {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	ctx := w.request.Context()
	switch w.sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.sm.Commit(ctx)
		if err != nil {
			return
		}
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

// sessionMiddleware loads the session for each request and saves it when the
// handler writes its response.
func sessionMiddleware(sm *scs.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{ResponseWriter: c.Writer, sm: sm, request: c.Request}
		c.Writer = w
		c.Next()
		w.commit()
	}
}
