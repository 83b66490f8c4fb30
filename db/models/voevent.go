package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Voevent : one ingested VOEvent packet, normalized.
//
// Datetimes are stored with timezone even though everything is UTC by
// convention (VOEvents themselves are UTC). Keeping the timezone in the
// column type makes the convention explicit instead of implied.
type Voevent struct {
	ID       int64     `json:"id" bun:",pk,autoincrement"`
	Received time.Time `json:"received" bun:",nullzero,notnull,default:current_timestamp"`
	Ivorn    string    `json:"ivorn" bun:",notnull,unique" validate:"required,startswith=ivo://"`
	// Stream is always derived from the ivorn, never set independently.
	Stream         string       `json:"stream" bun:",notnull"`
	Role           string       `json:"role" bun:",notnull" validate:"required,oneof=observation prediction utility test"`
	Version        string       `json:"version" bun:",nullzero"`
	AuthorIvorn    string       `json:"author_ivorn" bun:",nullzero"`
	AuthorDatetime bun.NullTime `json:"author_datetime" bun:",nullzero"`
	// XML holds the full packet, which can run to hundreds of kilobytes.
	// Queries select it only on explicit request, cfr. service.VoeventXML.
	XML string `json:"-" bun:",nullzero"`

	Cites []Cite `json:"cites" bun:"rel:has-many,join:id=voevent_id"`
}
