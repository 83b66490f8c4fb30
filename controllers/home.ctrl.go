package controllers

import (
	"net/http"

	"github.com/4pisky/voeventhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// HomeController : Home Controller
type HomeController struct {
	svc *service.VoeventhubService
}

func NewHomeController(svc *service.VoeventhubService) *HomeController {
	return &HomeController{svc: svc}
}

type HomeResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (controller *HomeController) Home(c echo.Context) error {
	name := controller.svc.Config.CustomName
	if name == "" {
		name = "voeventhub"
	}
	return c.JSON(http.StatusOK, &HomeResponse{
		Name:    name,
		Version: "1.0.0",
	})
}
