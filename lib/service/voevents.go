package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/4pisky/voeventhub.go/voevent"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Rows are validated again right before the insert, so InsertVoevent holds
// its constraints for callers that bypass Ingest.
var validate = validator.New()

const pgUniqueViolation = "23505"

// VoeventFilter is a conjunction of predicates over the indexed columns.
// Zero values mean "no constraint".
type VoeventFilter struct {
	Stream         string
	Role           string
	IvornContains  string
	Cited          string
	ReceivedBefore time.Time
	ReceivedAfter  time.Time
	// Descending flips the default insertion (id) order.
	Descending bool
	Limit      int
	Offset     int
	// WithCites eagerly loads the citation rows for each result.
	WithCites bool
}

type StreamCount struct {
	Stream string `json:"stream"`
	Count  int64  `json:"count"`
}

// Ingest runs the full pipeline for one raw packet: parse, extract, insert.
// On success the stored row is announced on the ingest pubsub.
func (svc *VoeventhubService) Ingest(ctx context.Context, data []byte, received time.Time) (*models.Voevent, error) {
	packet, err := voevent.Parse(data)
	if err != nil {
		return nil, err
	}
	row, cites, err := voevent.Extract(packet, received)
	if err != nil {
		return nil, err
	}
	if _, err := svc.InsertVoevent(ctx, row, cites); err != nil {
		return nil, err
	}
	svc.Logger.Infof("Ingested voevent ivorn=%s stream=%s role=%s cites=%d", row.Ivorn, row.Stream, row.Role, len(cites))
	svc.IngestPubSub.Publish(*row)
	return row, nil
}

// InsertVoevent persists the event and its cites atomically. The returned id
// is the assigned surrogate key. Racing inserts with the same ivorn resolve
// through the unique constraint: one wins, the rest get ErrDuplicateIvorn.
func (svc *VoeventhubService) InsertVoevent(ctx context.Context, row *models.Voevent, cites []models.Cite) (int64, error) {
	// Stream is never caller-settable, recompute it from the ivorn.
	stream, err := voevent.DeriveStream(row.Ivorn)
	if err != nil {
		return 0, err
	}
	row.Stream = stream
	if row.Received.IsZero() {
		row.Received = time.Now().UTC()
	}

	if err := validate.Struct(row); err != nil {
		return 0, voevent.ErrConstraintViolation
	}
	for i := range cites {
		if err := validate.Struct(&cites[i]); err != nil {
			return 0, voevent.ErrConstraintViolation
		}
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		for i := range cites {
			cites[i].VoeventID = row.ID
			if _, err := tx.NewInsert().Model(&cites[i]).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapPgError(err)
	}
	row.Cites = cites
	return row.ID, nil
}

// FindVoeventByIvorn does an exact, case-sensitive lookup with the cites
// loaded and the raw XML left behind in the database.
func (svc *VoeventhubService) FindVoeventByIvorn(ctx context.Context, ivorn string) (*models.Voevent, error) {
	var row models.Voevent
	err := svc.DB.NewSelect().
		Model(&row).
		ExcludeColumn("xml").
		Relation("Cites").
		Where("ivorn = ?", ivorn).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, voevent.ErrVoeventNotFound
		}
		return nil, err
	}
	return &row, nil
}

// VoeventXML fetches the raw packet on demand.
func (svc *VoeventhubService) VoeventXML(ctx context.Context, ivorn string) (string, error) {
	var row models.Voevent
	err := svc.DB.NewSelect().
		Model(&row).
		Column("xml").
		Where("ivorn = ?", ivorn).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", voevent.ErrVoeventNotFound
		}
		return "", err
	}
	return row.XML, nil
}

// Voevents lists events matching the filter. An empty result is not an error.
func (svc *VoeventhubService) Voevents(ctx context.Context, filter VoeventFilter) ([]models.Voevent, error) {
	voevents := []models.Voevent{}

	query := svc.DB.NewSelect().Model(&voevents).ExcludeColumn("xml")
	applyFilter(query, filter)
	if filter.WithCites {
		query.Relation("Cites")
	}
	if filter.Descending {
		query.OrderExpr("voevent.id DESC")
	} else {
		query.OrderExpr("voevent.id ASC")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = svc.Config.DefaultListLimit
	}
	query.Limit(limit)
	if filter.Offset > 0 {
		query.Offset(filter.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return voevents, nil
}

func (svc *VoeventhubService) CountVoevents(ctx context.Context, filter VoeventFilter) (int, error) {
	query := svc.DB.NewSelect().Model((*models.Voevent)(nil))
	applyFilter(query, filter)
	return query.Count(ctx)
}

// StreamCounts rolls up the stored events per stream.
func (svc *VoeventhubService) StreamCounts(ctx context.Context) ([]StreamCount, error) {
	counts := []StreamCount{}
	err := svc.DB.NewSelect().
		Model((*models.Voevent)(nil)).
		ColumnExpr("stream").
		ColumnExpr("count(*) AS count").
		GroupExpr("stream").
		OrderExpr("stream ASC").
		Scan(ctx, &counts)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// DeleteVoevent removes an event together with all its cites.
func (svc *VoeventhubService) DeleteVoevent(ctx context.Context, ivorn string) error {
	return svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var row models.Voevent
		err := tx.NewSelect().
			Model(&row).
			Column("id").
			Where("ivorn = ?", ivorn).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return voevent.ErrVoeventNotFound
			}
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Cite)(nil)).Where("voevent_id = ?", row.ID).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewDelete().Model(&row).WherePK().Exec(ctx)
		return err
	})
}

func applyFilter(query *bun.SelectQuery, filter VoeventFilter) {
	if filter.Stream != "" {
		query.Where("stream = ?", filter.Stream)
	}
	if filter.Role != "" {
		query.Where("role = ?", filter.Role)
	}
	if filter.IvornContains != "" {
		query.Where("ivorn LIKE ?", "%"+filter.IvornContains+"%")
	}
	if filter.Cited != "" {
		query.Where("voevent.id IN (SELECT voevent_id FROM cites WHERE ref_ivorn = ?)", filter.Cited)
	}
	if !filter.ReceivedAfter.IsZero() {
		query.Where("received >= ?", filter.ReceivedAfter)
	}
	if !filter.ReceivedBefore.IsZero() {
		query.Where("received < ?", filter.ReceivedBefore)
	}
}

// mapPgError translates driver errors into the store's taxonomy.
func mapPgError(err error) error {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		if pgErr.Field('C') == pgUniqueViolation {
			return voevent.ErrDuplicateIvorn
		}
		if pgErr.IntegrityViolation() {
			return voevent.ErrConstraintViolation
		}
	}
	return err
}
