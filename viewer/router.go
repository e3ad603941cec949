package viewer

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/luma/boingscope/storage"
)

type RouterOptions struct {
	Viewer *Viewer
	Status storage.Store

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Debug puts gin in debug mode
	Debug bool

	Log *zap.Logger
}

// NewRouter builds the HTTP API:
//
//	GET /ping       pong
//	GET /frame.png  the latest raster, 404 until the first one is painted
//	GET /status     the session status document
//	GET /metrics    Prometheus metrics
func NewRouter(options RouterOptions) *gin.Engine {
	gin.DisableConsoleColor()
	if !options.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	gatherer := options.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping", "/metrics"},
	}))

	// Logs all panic to error log
	r.Use(ginzap.RecoveryWithZap(log, true))

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.GET("/frame.png", func(c *gin.Context) {
		data, ok, err := options.Viewer.PNG()
		if err != nil {
			log.Error("Failed to encode frame", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if !ok {
			c.String(http.StatusNotFound, "no frame yet")
			return
		}

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", data)
	})

	r.GET("/status", func(c *gin.Context) {
		if options.Status == nil {
			c.Data(http.StatusOK, "application/json", []byte("{}"))
			return
		}

		doc, err := options.Status.Backup()
		if err != nil {
			log.Error("Failed to read status", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Data(http.StatusOK, "application/json", doc)
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}
