package transport

import (
	"github.com/4pisky/voeventhub.go/controllers"
	"github.com/4pisky/voeventhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// RegisterEndpoints wires up the fixed set of query endpoints plus the ingest
// endpoint. Each route maps to exactly one named store call; nothing here is
// generated or reflected.
func RegisterEndpoints(svc *service.VoeventhubService, e *echo.Echo, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	listCtrl := controllers.NewListVoeventsController(svc)
	getCtrl := controllers.NewGetVoeventController(svc)
	streamsCtrl := controllers.NewStreamsController(svc)
	ingestCtrl := controllers.NewIngestController(svc)

	e.GET("/", controllers.NewHomeController(svc).Home)

	api := e.Group("/api/v1", logMw)
	api.GET("/voevents", listCtrl.ListVoevents)
	api.GET("/voevents/count", listCtrl.CountVoevents)
	api.GET("/voevent", getCtrl.GetVoevent)
	api.GET("/voevent/xml", getCtrl.GetVoeventXML)

	// stream rollups walk the whole table, cache them
	api.GET("/streams", streamsCtrl.Streams, CreateCacheClient().Middleware())

	// writes get the strict limit
	api.POST("/packets", ingestCtrl.IngestPacket, strictRateLimitMiddleware)
}
