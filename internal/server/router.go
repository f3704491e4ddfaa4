package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/nodecore/internal/cache"
	"github.com/loykin/nodecore/internal/identity"
	"github.com/loykin/nodecore/internal/metrics"
	"github.com/loykin/nodecore/internal/node"
	"github.com/loykin/nodecore/internal/registry"
)

// Router provides the HTTP surface around an already registered node.
// Endpoints:
//
//	GET /             landing page
//	GET /logs         log viewer fed from the logs table
//	GET /health       JSON health with the node id assigned at registration
//	GET /favicon.ico  served from the static dir
//	GET /code         code server endpoint (placeholder)
//	GET /metrics      Prometheus metrics (when enabled)
//	/static, /data/logs  static directories
//
// All dependencies are injected; the router never registers or mutates the
// node identity itself.

type Router struct {
	ident     identity.Identity
	nodeID    int64
	role      node.Role
	reg       *registry.Registry
	presence  *cache.Presence
	staticDir string
	logsDir   string
	metricsOn bool
	started   time.Time
}

// Options carries the injected collaborators for a Router.
type Options struct {
	Identity  identity.Identity
	NodeID    int64
	Role      node.Role
	Registry  *registry.Registry
	Presence  *cache.Presence
	StaticDir string
	LogsDir   string
	Metrics   bool
}

func NewRouter(o Options) *Router {
	return &Router{
		ident:     o.Identity,
		nodeID:    o.NodeID,
		role:      o.Role,
		reg:       o.Registry,
		presence:  o.Presence,
		staticDir: o.StaticDir,
		logsDir:   o.LogsDir,
		metricsOn: o.Metrics,
		started:   time.Now(),
	}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(requestMetrics())
	g.SetHTMLTemplate(pageTemplates())

	g.GET("/", r.handleLanding)
	g.GET("/logs", r.handleLogs)
	g.GET("/health", r.handleHealth)
	g.GET("/favicon.ico", r.handleFavicon)
	g.GET("/code", r.handleCode)
	if r.metricsOn {
		g.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if r.staticDir != "" {
		g.Static("/static", r.staticDir)
	}
	if r.logsDir != "" {
		g.Static("/data/logs", r.logsDir)
	}
	return g
}

// NewServer wraps the router in an http.Server on addr with sane timeouts.
// The caller owns ListenAndServe and Shutdown.
func NewServer(addr string, r *Router) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.IncRequest(path, strconv.Itoa(c.Writer.Status()))
	}
}

// --- Handlers ---

func (r *Router) uptime() string {
	return time.Since(r.started).Round(time.Second).String()
}

func (r *Router) connections(c *gin.Context) int {
	n, err := r.presence.Count(c.Request.Context())
	if err != nil {
		return 0
	}
	return n
}

func (r *Router) handleLanding(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", gin.H{
		"ServerName":  r.ident.Name,
		"Version":     r.ident.Version,
		"Uptime":      r.uptime(),
		"Connections": r.connections(c),
	})
}

func (r *Router) handleLogs(c *gin.Context) {
	events, err := r.reg.RecentEvents(c.Request.Context(), 100)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load logs: %v", err)
		return
	}
	c.HTML(http.StatusOK, "logs.html", gin.H{
		"ServerName": r.ident.Name,
		"Version":    r.ident.Version,
		"Uptime":     r.uptime(),
		"Events":     events,
	})
}

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"node_id":     r.nodeID,
		"uuid":        r.ident.UUID,
		"role":        r.role.String(),
		"name":        r.ident.Name,
		"version":     r.ident.Version,
		"uptime":      r.uptime(),
		"connections": r.connections(c),
	})
}

func (r *Router) handleFavicon(c *gin.Context) {
	p := filepath.Join(r.staticDir, "img", "favicon.ico")
	if _, err := os.Stat(p); err != nil {
		c.String(http.StatusNotFound, "Favicon not found")
		return
	}
	c.File(p)
}

func (r *Router) handleCode(c *gin.Context) {
	c.String(http.StatusOK, "Code server endpoint")
}
