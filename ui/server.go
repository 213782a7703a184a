package ui

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"phddash/domain/dataset"
	"phddash/internal/cache"
	"phddash/internal/errors"
	"phddash/internal/logging"
)

var logger = logging.For("Server")

//go:embed templates/* static/*
var embeddedFiles embed.FS

// PageTitle is the heading shown above the dashboard
const PageTitle = "Top 20 doctorate-granting institutions ranked by number of minority U.S. citizen " +
	"and permanent resident doctorate recipients, by ethnicity and race of recipient"

// DatasetLoader is what the server needs from the memoized loader
type DatasetLoader interface {
	Load(ctx context.Context) (*dataset.Table, error)
	Invalidate()
	Stats() cache.Stats
}

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	loader    DatasetLoader
	widgets   Widgets
	templates *template.Template
	intro     template.HTML
}

// NewServer parses the embedded templates and wires the routes
func NewServer(loader DatasetLoader, widgets Widgets) (*Server, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	introSource, err := embeddedFiles.ReadFile("templates/intro.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read intro: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		loader:    loader,
		widgets:   widgets,
		templates: templates,
		intro:     renderMarkdown(introSource),
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

func renderMarkdown(source []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(source, p, renderer))
}

func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Logger(), gin.Recovery())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/data", s.handleData)
	api.GET("/charts/line", s.handleLineFigure)
	api.GET("/charts/box", s.handleBoxFigure)
	api.GET("/summary", s.handleSummary)
	api.POST("/cache/invalidate", s.handleInvalidate)

	s.router.GET("/charts/:chart", s.handleChartSVG)
	s.router.GET("/export/:file", s.handleExport)
}

// Handler exposes the router, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until the listener fails
func (s *Server) Start(addr string) error {
	logger.Infof("Starting dashboard on http://%s", addr)
	return s.router.Run(addr)
}

// load fetches (or reuses) the table and applies the sidebar state. The
// checkbox never influences filtered.
func (s *Server) load(c *gin.Context) (full, filtered *dataset.Table, state State, err error) {
	state = s.widgets.Read(c.Request.URL.Query())
	full, err = s.loader.Load(c.Request.Context())
	if err != nil {
		return nil, nil, state, err
	}
	return full, dataset.FilterByYear(full, state.Year), state, nil
}

func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	// Render to a buffer first so a template error never leaves a half page.
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Errorf("Template error for %s: %v", name, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	logger.Warnf("%s %s failed (%s): %v", c.Request.Method, c.Request.URL.Path, errors.GetCode(err), err)
	s.renderTemplate(c, status, "error.html", gin.H{
		"Title":  PageTitle,
		"Status": status,
		"Code":   errors.GetCode(err),
		"Error":  err.Error(),
	})
}

func (s *Server) jsonError(c *gin.Context, err error) {
	logger.Warnf("%s %s failed (%s): %v", c.Request.Method, c.Request.URL.Path, errors.GetCode(err), err)
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func marshalJS(v interface{}) (template.JS, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode figure")
	}
	return template.JS(raw), nil
}
