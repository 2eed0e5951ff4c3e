package dashboard

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KaramelBytes/vehdash/internal/analysis"
	"github.com/KaramelBytes/vehdash/internal/charts"
	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// Source yields the listings table; *dataset.Cache satisfies it.
type Source interface {
	Table() (*dataset.Table, error)
	Path() string
}

// ServerOptions configures the HTTP surface.
type ServerOptions struct {
	Page        Options
	CORSOrigins []string
}

type server struct {
	src    Source
	opt    Options
	logger *zap.Logger
}

// NewRouter wires the dashboard routes. Every request runs one full pass:
// cached load, filter, aggregate, render.
func NewRouter(src Source, so ServerOptions, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	s := &server{src: src, opt: so.Page, logger: logger}

	r := gin.New()
	r.Use(requestID())
	r.Use(ginLogger(logger))
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", s.health)
	r.GET("/", s.index)
	r.GET("/download", s.download)
	r.GET("/charts/:panel", s.chart)

	api := r.Group("/api")
	api.Use(corsMiddleware(so.CORSOrigins))
	{
		api.GET("/page", s.page)
		api.GET("/summary", s.summary)
	}
	return r, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data_path": s.src.Path()})
}

// table loads the source or answers the request with the load failure.
func (s *server) table(c *gin.Context) (*dataset.Table, bool) {
	t, err := s.src.Table()
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.String(status, err.Error())
		return nil, false
	}
	return t, true
}

func (s *server) index(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	st := ParseState(c.Request.URL.Query(), s.opt)
	c.HTML(http.StatusOK, indexTemplate, Render(t, st, s.opt))
}

func (s *server) page(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	st := ParseState(c.Request.URL.Query(), s.opt)
	c.JSON(http.StatusOK, Render(t, st, s.opt))
}

func (s *server) summary(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	q := c.Request.URL.Query()
	view := View(t, ParseState(q, s.opt))
	opt := analysis.DefaultOptions()
	opt.GroupBy = listParam(q, "group_by", true)
	rep := analysis.Summarize(s.src.Path(), view, opt)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(rep.Markdown()))
}

func (s *server) download(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	view := View(t, ParseState(c.Request.URL.Query(), s.opt))
	b, err := dataset.EncodeCSV(view)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+dataset.ExportFileName+`"`)
	c.Data(http.StatusOK, "text/csv", b)
}

func (s *server) chart(c *gin.Context) {
	id, err := charts.ParsePanelID(strings.TrimSuffix(c.Param("panel"), ".png"))
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	t, ok := s.table(c)
	if !ok {
		return
	}
	st := ParseState(c.Request.URL.Query(), s.opt)
	view := View(t, st)
	params, _ := PanelParams(view, st, s.opt)
	panel := charts.Build(view, id, params)
	if !panel.Ready() {
		c.String(http.StatusUnprocessableEntity, panel.Notice)
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderPNG(&buf, panel, s.opt.ChartSize); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "render chart: "+err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
