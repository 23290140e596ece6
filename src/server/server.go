package server

import (
	"context"
	"net/http"

	"github.com/hiveminds/marketplace/src/purchase"
	"github.com/hiveminds/marketplace/src/server/response"
	"github.com/hiveminds/marketplace/src/utils/config"
	"github.com/hiveminds/marketplace/src/utils/hedera"
	"github.com/hiveminds/marketplace/src/utils/monitoring"
	"github.com/hiveminds/marketplace/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// REST API server, exposes the marketplace endpoints
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	db        *gorm.DB
	operator  hedera.Operator
	purchaser *purchase.Purchaser
	monitor   *monitoring.Monitor

	// Caches public dataset reads
	datasetCache *cache.Cache
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	self.datasetCache = cache.New(config.Server.DatasetCacheTTL, config.Server.DatasetCacheCleanupInterval)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:    config.Server.ListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithDB(v *gorm.DB) *Server {
	self.db = v
	return self
}

func (self *Server) WithOperator(v hedera.Operator) *Server {
	self.operator = v
	return self
}

func (self *Server) WithPurchaser(v *purchase.Purchaser) *Server {
	self.purchaser = v
	return self
}

func (self *Server) WithMonitor(v *monitoring.Monitor) *Server {
	self.monitor = v
	return self
}

func (self *Server) run() (err error) {
	self.Router.Use(self.countRequest)

	registry := prometheus.NewRegistry()
	err = registry.Register(self.monitor.GetPrometheusCollector())
	if err != nil {
		return
	}
	self.Router.GET("metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if self.Config.Server.EnablePprof {
		pprof.Register(self.Router)
	}

	v1 := self.Router.Group("v1")
	{
		v1.GET("health", self.monitor.OnGetHealth)
		v1.GET("state", self.monitor.OnGetState)

		// Public reads
		v1.GET("datasets", self.onListDatasets)
		v1.GET("datasets/:id", self.onGetDataset)
		v1.GET("jobs", self.onListJobs)
		v1.GET("jobs/:id", self.onGetJob)

		// Compute providers identify themselves in the request body
		v1.POST("jobs/:id/claim", self.onClaimJob)
		v1.POST("jobs/:id/submit", self.onSubmitJobResult)

		// Authenticated
		authed := v1.Group("", self.authenticate)
		{
			authed.POST("datasets", self.onCreateDataset)
			authed.POST("datasets/:id/purchase", self.onPurchaseDataset)
			authed.GET("datasets/:id/access", self.onCheckAccess)
			authed.GET("purchases", self.onListPurchases)
			authed.POST("jobs", self.onCreateJob)
		}
	}

	self.Log.WithField("address", self.Config.Server.ListenAddress).Info("Starting REST server")

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

func (self *Server) countRequest(c *gin.Context) {
	self.monitor.Report.Server.State.RequestsServed.Inc()
	c.Next()
}

func (self *Server) badRequest(c *gin.Context, message, details string) {
	if self.monitor != nil {
		self.monitor.Report.Server.Errors.BadRequest.Inc()
	}
	c.JSON(http.StatusBadRequest, response.Error{Error: message, Details: details})
}

func (self *Server) dbError(c *gin.Context, err error, message string) {
	if self.monitor != nil {
		self.monitor.Report.Server.Errors.DbError.Inc()
	}
	self.Log.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, response.Error{Error: message})
}
