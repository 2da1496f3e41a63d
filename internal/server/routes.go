package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/server/api"
	"github.com/looplj/datavault/internal/server/biz"
	"github.com/looplj/datavault/internal/server/middleware"
)

type Handlers struct {
	fx.In

	System    *api.SystemHandlers
	Tokens    *api.TokenHandlers
	Datasets  *api.DatasetHandlers
	Producers *api.ProducerHandlers
	Entries   *api.EntryHandlers
	Analytics *api.AnalyticsHandlers
}

type Services struct {
	fx.In

	AuthService *biz.AuthService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))

	// Setup CORS middleware at server level if enabled
	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	base := server.Group(server.Config.BasePath, middleware.WithTimeout(server.Config.RequestTimeout))

	// Health check endpoint - no authentication required
	base.GET("/health", handlers.System.Health)

	v1 := base.Group("/v1",
		middleware.WithCaller(services.AuthService),
		middleware.WithAnalyticsToken(),
	)

	{
		v1.GET("/me", handlers.Tokens.WhoAmI)
		v1.POST("/tokens", handlers.Tokens.RegisterToken)
		v1.GET("/me/producer-datasets", handlers.Producers.MyProducerDatasets)
		v1.DELETE("/me/entries", handlers.Entries.DeleteAllMyEntries)
		v1.GET("/users/:identity/datasets", handlers.Datasets.OwnedDatasets)
	}

	{
		datasets := v1.Group("/datasets")
		datasets.POST("", handlers.Datasets.CreateDataset)
		datasets.GET("", handlers.Datasets.ListDatasets)
		datasets.GET("/search", handlers.Datasets.SearchDatasets)
		datasets.GET("/ownerships", handlers.Datasets.Ownerships)
		datasets.POST("/batch", handlers.Datasets.GetManyDatasets)
		datasets.POST("/entry-counts", handlers.Entries.EntryCounts)

		datasets.GET("/:id", handlers.Datasets.GetDataset)
		datasets.PATCH("/:id", handlers.Datasets.UpdateDataset)
		datasets.DELETE("/:id", handlers.Datasets.DeleteDataset)

		datasets.GET("/:id/producers", handlers.Producers.Producers)
		datasets.GET("/:id/producers/me", handlers.Producers.IsProducer)
		datasets.POST("/:id/producers", handlers.Producers.UpdateProducerList)

		datasets.POST("/:id/entries", handlers.Entries.PutEntries)
		datasets.GET("/:id/entries/me", handlers.Entries.MyEntries)
		datasets.DELETE("/:id/entries/me", handlers.Entries.DeleteMyEntry)
		datasets.GET("/:id/producer-stats", handlers.Entries.ProducerStats)
		datasets.GET("/:id/sample", handlers.Entries.SampleDataset)

		datasets.GET("/:id/download", handlers.Analytics.DownloadDataset)
		datasets.GET("/:id/authorized-columns", handlers.Analytics.AuthorizedColumns)
		datasets.GET("/:id/activity", handlers.Analytics.DatasetActivity)
		datasets.GET("/:id/query-activity", handlers.Analytics.DatasetQueryActivity)
	}

	v1.POST("/analytics", handlers.Analytics.GetAnalytics)
}
