package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"phddash/domain/dataset"
	"phddash/internal/charts"
	"phddash/internal/errors"
	"phddash/internal/export"
)

// IndexPage is the data behind index.html
type IndexPage struct {
	Title    string
	Intro    template.HTML
	Widgets  Widgets
	State    State
	Raw      *dataset.Table
	Rows     int
	Filtered int
	LineJSON template.JS
	BoxJSON  template.JS
	LoadID   string
	Digest   string
}

func (s *Server) handleIndex(c *gin.Context) {
	full, filtered, state, err := s.load(c)
	if err != nil {
		s.renderError(c, err)
		return
	}

	lineJS, err := marshalJS(charts.LineFigure(filtered))
	if err != nil {
		s.renderError(c, err)
		return
	}
	boxJS, err := marshalJS(charts.BoxFigure(filtered))
	if err != nil {
		s.renderError(c, err)
		return
	}

	page := IndexPage{
		Title:    PageTitle,
		Intro:    s.intro,
		Widgets:  s.widgets,
		State:    state,
		Rows:     full.Len(),
		Filtered: filtered.Len(),
		LineJSON: lineJS,
		BoxJSON:  boxJS,
		LoadID:   full.LoadID,
		Digest:   full.Digest,
	}
	if state.ShowRaw {
		page.Raw = full
	}
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

func (s *Server) handleData(c *gin.Context) {
	_, filtered, state, err := s.load(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":  state.Year,
		"rows":  filtered.Len(),
		"table": filtered,
	})
}

func (s *Server) handleLineFigure(c *gin.Context) {
	_, filtered, _, err := s.load(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, charts.LineFigure(filtered))
}

func (s *Server) handleBoxFigure(c *gin.Context) {
	_, filtered, _, err := s.load(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, charts.BoxFigure(filtered))
}

func (s *Server) handleSummary(c *gin.Context) {
	_, filtered, state, err := s.load(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	summaries, err := charts.Summarize(filtered)
	if err != nil {
		s.jsonError(c, errors.Wrap(err, "failed to summarize decades"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": state.Year, "decades": summaries})
}

func (s *Server) handleChartSVG(c *gin.Context) {
	var chart string
	switch c.Param("chart") {
	case "line.svg":
		chart = "line"
	case "box.svg":
		chart = "box"
	default:
		s.jsonError(c, errors.NotFound("chart "+c.Param("chart")))
		return
	}

	_, filtered, _, err := s.load(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.Render(&buf, chart, filtered); err != nil {
		s.jsonError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	file := c.Param("file")
	if file != "data.xlsx" && file != "data.tsv" {
		s.jsonError(c, errors.NotFound("export "+file))
		return
	}

	_, filtered, state, err := s.load(c)
	if err != nil {
		s.jsonError(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/tab-separated-values; charset=utf-8"
	name := "phds_through_" + strconv.Itoa(state.Year)
	if file == "data.xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		name += ".xlsx"
		err = export.WriteXLSX(&buf, filtered)
	} else {
		name += ".tsv"
		err = export.WriteTSV(&buf, filtered)
	}
	if err != nil {
		s.jsonError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleInvalidate(c *gin.Context) {
	s.loader.Invalidate()
	c.JSON(http.StatusOK, s.loader.Stats())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  s.loader.Stats(),
	})
}
