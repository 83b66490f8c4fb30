package controllers

import (
	"net/http"

	"github.com/4pisky/voeventhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// StreamsController : Streams Controller
type StreamsController struct {
	svc *service.VoeventhubService
}

func NewStreamsController(svc *service.VoeventhubService) *StreamsController {
	return &StreamsController{svc: svc}
}

type StreamsResponse struct {
	Streams []service.StreamCount `json:"streams"`
}

// Streams : per-stream event counts over the whole table.
func (controller *StreamsController) Streams(c echo.Context) error {
	counts, err := controller.svc.StreamCounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &StreamsResponse{Streams: counts})
}
