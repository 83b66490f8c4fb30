package models

// Cite : one EventIVORN entry from a packet's Citations block.
//
// The referenced ivorn is not required to exist in the voevent table; packets
// routinely cite events we have not (yet) ingested. Entries parsed from the
// same Citations block share the block's Description text, so descriptions
// may be duplicated across rows. That mirrors the packet structure.
type Cite struct {
	ID          int64    `json:"id" bun:",pk,autoincrement"`
	VoeventID   int64    `json:"voevent_id" bun:",notnull"`
	Voevent     *Voevent `json:"-" bun:"rel:belongs-to,join:voevent_id=id"`
	RefIvorn    string   `json:"ref_ivorn" bun:",notnull" validate:"required"`
	CiteType    string   `json:"cite_type" bun:",notnull" validate:"required,oneof=followup retraction supersedes"`
	Description string   `json:"description,omitempty" bun:",nullzero"`
}
