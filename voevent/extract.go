package voevent

import (
	"fmt"
	"strings"
	"time"

	"github.com/4pisky/voeventhub.go/common"
	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

// Layouts accepted for Who/Date. VOEvents are UTC by convention but authors
// frequently omit the timezone designator.
var whoDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Extract maps a parsed packet onto a Voevent row and its Cite rows.
// The rows are not persisted; that is the service's job, in one transaction.
// A zero received time means "now".
func Extract(p *Packet, received time.Time) (*models.Voevent, []models.Cite, error) {
	if p.Ivorn == "" {
		return nil, nil, &MalformedDocumentError{Reason: "missing ivorn attribute"}
	}
	stream, err := DeriveStream(p.Ivorn)
	if err != nil {
		return nil, nil, err
	}
	if !validRole(p.Role) {
		return nil, nil, &MalformedDocumentError{
			Reason: fmt.Sprintf("role %q is not one of observation|prediction|utility|test", p.Role),
		}
	}
	if received.IsZero() {
		received = time.Now().UTC()
	}

	row := &models.Voevent{
		Ivorn:    p.Ivorn,
		Stream:   stream,
		Role:     p.Role,
		Version:  p.Version,
		Received: received.UTC(),
		XML:      p.Raw(),
	}

	if p.Who != nil {
		row.AuthorIvorn = p.Who.AuthorIVORN
		if p.Who.Date != "" {
			authored, err := parseWhoDate(p.Who.Date)
			if err != nil {
				return nil, nil, &MalformedDocumentError{Reason: "unparseable Who/Date", Err: err}
			}
			row.AuthorDatetime = bun.NullTime{Time: authored}
		}
	}

	cites, err := extractCites(p)
	if err != nil {
		return nil, nil, err
	}
	return row, cites, nil
}

// DeriveStream returns the portion of an ivorn between the ivo:// prefix and
// the first '#'. An ivorn without a fragment separator is rejected, so stream
// stays deterministically derivable for every stored row.
func DeriveStream(ivorn string) (string, error) {
	if !strings.HasPrefix(ivorn, common.IvornPrefix) {
		return "", &MalformedDocumentError{Reason: fmt.Sprintf("ivorn %q lacks the %s prefix", ivorn, common.IvornPrefix)}
	}
	idx := strings.Index(ivorn, "#")
	if idx < 0 {
		return "", &MalformedDocumentError{Reason: fmt.Sprintf("ivorn %q has no '#' separator", ivorn)}
	}
	return ivorn[len(common.IvornPrefix):idx], nil
}

func parseWhoDate(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range whoDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func extractCites(p *Packet) ([]models.Cite, error) {
	// Citations are optional, absence is not an error.
	if p.Citations == nil {
		return []models.Cite{}, nil
	}
	// The Description lives on the Citations block, so every entry from the
	// same packet shares it.
	description := strings.TrimSpace(p.Citations.Description)

	cites := make([]models.Cite, 0, len(p.Citations.EventIvorns))
	for _, entry := range p.Citations.EventIvorns {
		ref := strings.TrimSpace(entry.Ref)
		if ref == "" {
			log.Info().Str("ivorn", p.Ivorn).Msg("ignoring empty citation")
			continue
		}
		if !validCiteType(entry.Cite) {
			return nil, &MalformedDocumentError{
				Reason: fmt.Sprintf("cite type %q is not one of followup|retraction|supersedes", entry.Cite),
			}
		}
		cites = append(cites, models.Cite{
			RefIvorn:    ref,
			CiteType:    entry.Cite,
			Description: description,
		})
	}
	return cites, nil
}
