package controllers

import (
	"time"

	"github.com/4pisky/voeventhub.go/db/models"
)

// Explicit response shapes with a fixed field order. The stored XML is never
// part of a listing; it has its own endpoint.

type VoeventResponse struct {
	ID             int64          `json:"id"`
	Received       time.Time      `json:"received"`
	Ivorn          string         `json:"ivorn"`
	Stream         string         `json:"stream"`
	Role           string         `json:"role"`
	Version        string         `json:"version,omitempty"`
	AuthorIvorn    string         `json:"author_ivorn,omitempty"`
	AuthorDatetime *time.Time     `json:"author_datetime,omitempty"`
	Cites          []CiteResponse `json:"cites,omitempty"`
}

type CiteResponse struct {
	ID          int64  `json:"id"`
	RefIvorn    string `json:"ref_ivorn"`
	CiteType    string `json:"cite_type"`
	Description string `json:"description,omitempty"`
}

func newVoeventResponse(voevent *models.Voevent, withCites bool) VoeventResponse {
	response := VoeventResponse{
		ID:          voevent.ID,
		Received:    voevent.Received,
		Ivorn:       voevent.Ivorn,
		Stream:      voevent.Stream,
		Role:        voevent.Role,
		Version:     voevent.Version,
		AuthorIvorn: voevent.AuthorIvorn,
	}
	if !voevent.AuthorDatetime.IsZero() {
		authored := voevent.AuthorDatetime.Time
		response.AuthorDatetime = &authored
	}
	if withCites {
		response.Cites = make([]CiteResponse, len(voevent.Cites))
		for i, cite := range voevent.Cites {
			response.Cites[i] = CiteResponse{
				ID:          cite.ID,
				RefIvorn:    cite.RefIvorn,
				CiteType:    cite.CiteType,
				Description: cite.Description,
			}
		}
	}
	return response
}
