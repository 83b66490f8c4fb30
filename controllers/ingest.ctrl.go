package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/4pisky/voeventhub.go/lib/responses"
	"github.com/4pisky/voeventhub.go/lib/service"
	"github.com/4pisky/voeventhub.go/voevent"
	"github.com/labstack/echo/v4"
)

// IngestController : Ingest Controller
type IngestController struct {
	svc *service.VoeventhubService
}

func NewIngestController(svc *service.VoeventhubService) *IngestController {
	return &IngestController{svc: svc}
}

type IngestResponse struct {
	ID     int64  `json:"id"`
	Ivorn  string `json:"ivorn"`
	Stream string `json:"stream"`
}

// IngestPacket : accepts one raw VOEvent packet in the request body and
// stores it. A repeated ivorn is a conflict, not a server error; the caller
// can treat it as already ingested.
func (controller *IngestController) IngestPacket(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	row, err := controller.svc.Ingest(c.Request().Context(), body, time.Now().UTC())
	if err != nil {
		switch {
		case voevent.IsMalformed(err):
			controller.svc.Logger.Errorf("Rejected malformed packet: %v", err)
			return c.JSON(responses.MalformedPacketError.HttpStatusCode, responses.MalformedPacketError)
		case errors.Is(err, voevent.ErrDuplicateIvorn):
			return c.JSON(responses.DuplicateIvornError.HttpStatusCode, responses.DuplicateIvornError)
		case errors.Is(err, voevent.ErrConstraintViolation):
			return c.JSON(responses.BadArgumentsError.HttpStatusCode, responses.BadArgumentsError)
		}
		return err
	}

	return c.JSON(http.StatusCreated, &IngestResponse{
		ID:     row.ID,
		Ivorn:  row.Ivorn,
		Stream: row.Stream,
	})
}
