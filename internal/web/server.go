// Package web serves the browser front end: the page skeleton, its script,
// and the display region fragment produced by the scan controller.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"newsquant/internal/config"
	"newsquant/internal/scan"
	"newsquant/internal/view"
	"newsquant/pkg/newsquant"
)

//go:embed assets/*
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

// ThrottledText is shown when scans arrive faster than the configured rate.
const ThrottledText = "Too many scans, try again shortly."

// Server serves the page and its fragment endpoint.
type Server struct {
	scanner  scan.Scanner
	scanCfg  config.Scan
	log      logrus.FieldLogger
	limiter  *rate.Limiter
	ctrlOpts []scan.Option
}

// NewServer creates a web server that scans through scanner.
func NewServer(scanner scan.Scanner, cfg *config.Config, log logrus.FieldLogger) *Server {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	perSec := rate.Limit(float64(cfg.Web.RateLimitPerMin) / 60.0)
	if cfg.Web.RateLimitPerMin <= 0 {
		perSec = rate.Inf
	}
	burst := cfg.Web.Burst
	if burst < 1 {
		burst = 1
	}

	s := &Server{
		scanner: scanner,
		scanCfg: cfg.Scan,
		log:     log,
		limiter: rate.NewLimiter(perSec, burst),
	}
	s.ctrlOpts = []scan.Option{
		scan.WithLogger(log),
		scan.WithPeriods(config.Values(cfg.Scan.Periods)...),
		scan.WithAllIndustries(cfg.Scan.AllIndustries),
	}
	if len(cfg.Scan.Industries) > 0 {
		s.ctrlOpts = append(s.ctrlOpts, scan.WithIndustries(config.Values(cfg.Scan.Industries)...))
	}
	return s
}

// RegisterRoutes registers all routes on the given router.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/", s.handlePage)
	r.GET("/static/:asset", s.handleAsset)
	r.GET("/fragment", s.rateLimit(), s.handleFragment)
	r.GET("/api/scan", s.rateLimit(), s.handleScanJSON)
	r.GET("/healthz", s.handleHealth)
}

// Handler returns an http.Handler with recovery and request logging.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	s.RegisterRoutes(r)
	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("http request")
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			s.log.WithField("path", c.Request.URL.Path).Warn("scan throttled")
			writeStatus(c, http.StatusTooManyRequests, ThrottledText)
			c.Abort()
			return
		}
		c.Next()
	}
}

type pageData struct {
	Periods       []config.Option
	Industries    []config.Option
	DefaultPeriod string
	BusyText      string
	LabelMore     string
	LabelLess     string
}

func (s *Server) handlePage(c *gin.Context) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Periods:       s.scanCfg.Periods,
		Industries:    s.scanCfg.Industries,
		DefaultPeriod: s.scanCfg.DefaultPeriod,
		BusyText:      scan.BusyText,
		LabelMore:     view.LabelMore,
		LabelLess:     view.LabelLess,
	})
	if err != nil {
		s.log.WithError(err).Error("rendering page")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleAsset(c *gin.Context) {
	name := path.Base(c.Param("asset"))
	if name == "index.html" {
		c.Status(http.StatusNotFound)
		return
	}
	data, err := fs.ReadFile(assets, "assets/"+name)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, mimeType(name), data)
}

// handleFragment runs one scan cycle against a request-scoped display region
// and returns the region as HTML. Scan failures are display outcomes, so they
// are returned with 200; only rejected selections are client errors.
func (s *Server) handleFragment(c *gin.Context) {
	region := view.NewBuffer()
	ctrl, err := scan.New(s.scanner, scan.Handles{
		Period:   scan.Fixed(c.Query("period")),
		Industry: scan.Fixed(c.Query("industry")),
		Display:  region,
	}, s.ctrlOpts...)
	if err != nil {
		s.log.WithError(err).Error("binding scan controller")
		writeStatus(c, http.StatusInternalServerError, err.Error())
		return
	}

	err = ctrl.Trigger(c.Request.Context())
	if errors.Is(err, scan.ErrUnknownPeriod) || errors.Is(err, scan.ErrUnknownIndustry) {
		writeStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	c.Header("X-Scan-Outcome", outcomeOf(err, region).String())
	var buf bytes.Buffer
	if err := region.WriteHTML(&buf); err != nil {
		s.log.WithError(err).Error("rendering display region")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleScanJSON relays the scan API through the SDK client, for callers
// that want the raw items rather than rendered HTML.
func (s *Server) handleScanJSON(c *gin.Context) {
	q, err := scan.ParseQuery(c.Query("period"), c.Query("industry"), s.ctrlOpts...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := s.scanner.Scan(c.Request.Context(), q)
	if err != nil {
		var rf *newsquant.RequestFailedError
		if errors.As(err, &rf) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "upstream_status": rf.StatusCode})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func outcomeOf(err error, region *view.Buffer) scan.Outcome {
	var rf *newsquant.RequestFailedError
	switch {
	case err == nil && region.List() != nil:
		return scan.OutcomePopulated
	case err == nil:
		return scan.OutcomeEmpty
	case errors.As(err, &rf):
		return scan.OutcomeRequestFailed
	default:
		return scan.OutcomeTransportFailed
	}
}

func writeStatus(c *gin.Context, status int, msg string) {
	var buf bytes.Buffer
	if err := view.WriteStatusHTML(&buf, msg); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func mimeType(name string) string {
	switch path.Ext(name) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	default:
		return "text/html; charset=utf-8"
	}
}
