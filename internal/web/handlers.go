package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pustaka/internal/catalog"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// Flash kinds, used as CSS classes.
const (
	flashInfo  = "info"
	flashWarn  = "warn"
	flashError = "error"
)

type pageData struct {
	Books     []types.Book
	Columns   []types.Column
	Editable  []types.Column
	Keyword   string
	Flash     string
	FlashKind string
	Title     string
	Author    string
	Year      string
	CSRFField template.HTML
}

type confirmData struct {
	Book      types.Book
	Prompt    string
	CSRFField template.HTML
}

// openCatalog returns a view loaded with keyword and a form over it. Each
// request gets its own; only the store is shared.
func (s *Server) openCatalog(keyword string, clip catalog.Clipboard) (*catalog.View, *catalog.Form, error) {
	view := catalog.NewView(s.opts.Store)
	if err := view.SetFilter(keyword); err != nil {
		return nil, nil, err
	}
	return view, catalog.NewForm(s.opts.Store, view, clip), nil
}

func (s *Server) health(c *gin.Context) {
	books, err := s.opts.Store.List("")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "books": len(books)})
}

func (s *Server) index(c *gin.Context) {
	keyword := c.Query("q")
	view, _, err := s.openCatalog(keyword, nil)
	if err != nil {
		s.serverError(c, err)
		return
	}

	ctx := c.Request.Context()
	data := pageData{
		Books:     view.Rows(),
		Columns:   types.Columns,
		Editable:  []types.Column{types.ColumnTitle, types.ColumnAuthor, types.ColumnYear},
		Keyword:   keyword,
		Flash:     s.sessions.PopString(ctx, keyFlash),
		FlashKind: s.sessions.PopString(ctx, keyFlashKind),
		Title:     s.sessions.PopString(ctx, keyTitle),
		Author:    s.sessions.PopString(ctx, keyAuthor),
		Year:      s.sessions.PopString(ctx, keyYear),
		CSRFField: csrf.TemplateField(c.Request),
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) createBook(c *gin.Context) {
	_, form, err := s.openCatalog("", nil)
	if err != nil {
		s.serverError(c, err)
		return
	}
	form.Title = c.PostForm("title")
	form.Author = c.PostForm("author")
	form.Year = c.PostForm("year")

	id, err := form.Save()
	if err != nil {
		s.keepForm(c, form)
		s.fail(c, err)
		return
	}
	s.flash(c, flashInfo, "Saved book ID "+strconv.FormatInt(id, 10)+".")
	s.redirectHome(c)
}

func (s *Server) pasteBook(c *gin.Context) {
	_, form, err := s.openCatalog("", catalog.StaticClipboard(c.PostForm("line")))
	if err != nil {
		s.serverError(c, err)
		return
	}
	ok, err := form.PasteFromClipboard()
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		s.flash(c, flashWarn, "Pasted text must be: title, author, year")
		s.redirectHome(c)
		return
	}
	s.keepForm(c, form)
	s.redirectHome(c)
}

func (s *Server) editBook(c *gin.Context) {
	id, ok := s.bookID(c)
	if !ok {
		return
	}
	column, err := types.ParseColumn(c.PostForm("column"))
	if err != nil {
		s.fail(c, err)
		return
	}

	view, _, err := s.openCatalog("", nil)
	if err != nil {
		s.serverError(c, err)
		return
	}
	row, err := view.SelectID(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	req, err := view.BeginEdit(row, column)
	if err != nil {
		s.fail(c, err)
		return
	}
	applied, err := view.CommitEdit(req, c.PostForm("value"), true)
	if err != nil {
		s.fail(c, err)
		return
	}
	if applied {
		s.flash(c, flashInfo, "Updated "+column.String()+" of book ID "+strconv.FormatInt(id, 10)+".")
	} else {
		s.flash(c, flashInfo, "Blank value; book unchanged.")
	}
	s.redirectHome(c)
}

func (s *Server) confirmDeletePage(c *gin.Context) {
	id, ok := s.bookID(c)
	if !ok {
		return
	}
	view, form, err := s.openCatalog("", nil)
	if err != nil {
		s.serverError(c, err)
		return
	}
	row, err := view.SelectID(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	req, err := form.RequestDelete()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "confirm.html", confirmData{
		Book:      view.Rows()[row],
		Prompt:    req.Prompt,
		CSRFField: csrf.TemplateField(c.Request),
	})
}

func (s *Server) deleteBook(c *gin.Context) {
	id, ok := s.bookID(c)
	if !ok {
		return
	}
	view, form, err := s.openCatalog("", nil)
	if err != nil {
		s.serverError(c, err)
		return
	}
	if _, err := view.SelectID(id); err != nil {
		s.fail(c, err)
		return
	}
	req, err := form.RequestDelete()
	if err != nil {
		s.fail(c, err)
		return
	}
	deleted, err := form.ConfirmDelete(req, c.PostForm("confirm") == "yes")
	if err != nil {
		s.fail(c, err)
		return
	}
	if deleted {
		s.flash(c, flashInfo, "Deleted book ID "+strconv.FormatInt(id, 10)+".")
	} else {
		s.flash(c, flashInfo, "Delete cancelled.")
	}
	s.redirectHome(c)
}

func (s *Server) exportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="perpustakaan.csv"`)
	c.Status(http.StatusOK)
	if err := s.opts.Store.WriteCSV(c.Writer); err != nil {
		// Headers are already out; the client sees a truncated file.
		c.Error(err)
		s.log.Error("csv download failed", zap.Error(err))
	}
}

// bookID parses the :id path parameter, flashing a warning when invalid.
func (s *Server) bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.flash(c, flashWarn, "Invalid book ID.")
		s.redirectHome(c)
		return 0, false
	}
	return id, true
}

func (s *Server) keepForm(c *gin.Context, form *catalog.Form) {
	ctx := c.Request.Context()
	s.sessions.Put(ctx, keyTitle, form.Title)
	s.sessions.Put(ctx, keyAuthor, form.Author)
	s.sessions.Put(ctx, keyYear, form.Year)
}

func (s *Server) flash(c *gin.Context, kind, msg string) {
	ctx := c.Request.Context()
	s.sessions.Put(ctx, keyFlash, msg)
	s.sessions.Put(ctx, keyFlashKind, kind)
}

// fail flashes err and redirects home. User mistakes are warnings; anything
// else is logged as an error.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrUnknownColumn),
		errors.Is(err, types.ErrReadOnlyColumn),
		errors.Is(err, types.ErrNoSelection):
		s.flash(c, flashWarn, err.Error())
	default:
		c.Error(err)
		s.flash(c, flashError, "Error: "+err.Error())
	}
	s.redirectHome(c)
}

func (s *Server) serverError(c *gin.Context, err error) {
	c.Error(err)
	c.String(http.StatusInternalServerError, "catalog unavailable: %v", err)
}

func (s *Server) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
