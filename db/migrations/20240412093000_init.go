package migrations

import (
	"context"

	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/uptrace/bun"
)

/* Since this init will reflect the latest model fields when run on a fresh db
make sure that when you add/remove columns in subsequent migrations
IfNotExists/IfExists is used, otherwise it's going to result in errors.
*/
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateTable().
			Model((*models.Voevent)(nil)).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().
			Model((*models.Cite)(nil)).
			ForeignKey(`("voevent_id") REFERENCES "voevents" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return err
		}

		// ivorn lookups are backed by the unique constraint; these cover the
		// filter columns, plus ref_ivorn for reverse citation lookups.
		for _, q := range []string{
			`CREATE INDEX IF NOT EXISTS voevents_stream_idx ON voevents (stream)`,
			`CREATE INDEX IF NOT EXISTS voevents_role_idx ON voevents (role)`,
			`CREATE INDEX IF NOT EXISTS voevents_received_idx ON voevents (received)`,
			`CREATE INDEX IF NOT EXISTS cites_ref_ivorn_idx ON cites (ref_ivorn)`,
		} {
			if _, err := db.ExecContext(ctx, q); err != nil {
				return err
			}
		}

		return nil
	}, nil)
}
