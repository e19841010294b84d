package server

import (
	"github.com/OFFIS-RIT/atlas/internal/server/middleware"
	"github.com/OFFIS-RIT/atlas/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Node read facade
	apiRoutes.GET("/nodes", routes.GetNodeHandler)
	apiRoutes.GET("/nodes/search", routes.SearchNodesHandler)
	apiRoutes.GET("/nodes/neighbors", routes.GetNeighborsHandler)

	// Node lifecycle
	apiRoutes.POST("/nodes", routes.CreateNodeHandler)
	apiRoutes.POST("/nodes/connect", routes.ConnectNodesHandler)
	apiRoutes.POST("/nodes/merge", routes.MergeNodesHandler, middleware.RequireAdmin)
	apiRoutes.PATCH("/nodes/value", routes.UpdateNodeValueHandler, middleware.RequireAdmin)
	apiRoutes.DELETE("/nodes", routes.DeleteNodeHandler, middleware.RequireAdmin)

	// Batch jobs
	apiRoutes.POST("/jobs/ingest", routes.CreateIngestJobHandler, middleware.RequireAdmin)
	apiRoutes.POST("/jobs/unify", routes.CreateUnifyJobHandler, middleware.RequireAdmin)
}
