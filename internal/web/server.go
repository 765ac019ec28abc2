// Package web serves the catalog as a local web page: the record table, the
// entry form, search, in-place edit, delete with confirmation and CSV
// download.
package web

import (
	"context"
	"crypto/rand"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/internal/backup"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Store types.Store
	// DB holds the sessions table; normally the catalog's own handle.
	DB  *sql.DB
	Log *zap.Logger

	Addr string
	// CSRFKey is the 32-byte authentication key for CSRF tokens. A random
	// key is generated when empty.
	CSRFKey       []byte
	SecureCookies bool

	// BackupSchedule is a cron expression; empty disables backups.
	BackupSchedule string
	BackupDir      string
}

// Server is the web front end.
type Server struct {
	opts         Options
	log          *zap.Logger
	sessions     *scs.SessionManager
	sessionStore *sqlite3store.SQLite3Store
	backups      *backup.Scheduler
	router       *gin.Engine
	closeOnce    sync.Once
}

// New builds a server. It creates the sessions table and, when a backup
// schedule is set, the backup scheduler. Call Close to release them if Run
// is never called.
func New(opts Options) (*Server, error) {
	if opts.Store == nil || opts.DB == nil {
		return nil, errors.New("web: store and database are required")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if len(opts.CSRFKey) == 0 {
		opts.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(opts.CSRFKey); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
	}

	s := &Server{opts: opts, log: opts.Log.Named("web")}

	if opts.BackupSchedule != "" {
		sched, err := backup.NewScheduler(opts.Store, opts.BackupDir, opts.BackupSchedule, opts.Log)
		if err != nil {
			return nil, err
		}
		s.backups = sched
	}

	sm, store, err := newSessionManager(opts.DB, opts.SecureCookies)
	if err != nil {
		return nil, err
	}
	s.sessions = sm
	s.sessionStore = store

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s.router = s.newRouter(tmpl)
	return s, nil
}

func (s *Server) newRouter(tmpl *template.Template) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.log))
	router.SetHTMLTemplate(tmpl)

	router.GET("/health", s.health)

	// CSRF runs before the session so that its request replacement does not
	// drop the session context.
	pages := router.Group("/")
	pages.Use(csrfMiddleware(s.opts.CSRFKey, s.opts.SecureCookies))
	pages.Use(sessionMiddleware(s.sessions))
	{
		pages.GET("/", s.index)
		pages.POST("/books", s.createBook)
		pages.POST("/books/paste", s.pasteBook)
		pages.POST("/books/:id/edit", s.editBook)
		pages.GET("/books/:id/delete", s.confirmDeletePage)
		pages.POST("/books/:id/delete", s.deleteBook)
		pages.GET("/export.csv", s.exportCSV)
	}
	return router
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the backup scheduler if configured and serves HTTP on the
// configured address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	if s.backups != nil {
		if err := s.backups.Start(ctx); err != nil {
			ln.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving catalog", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return <-errCh
}

// Close stops the backup scheduler and the session cleanup goroutine.
// Close is idempotent.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		if s.backups != nil {
			s.backups.Stop()
		}
		if s.sessionStore != nil {
			s.sessionStore.StopCleanup()
		}
	})
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		log.Info("request completed", fields...)
	}
}
