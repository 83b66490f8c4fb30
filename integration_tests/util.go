package integration_tests

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun/migrate"

	"github.com/4pisky/voeventhub.go/db"
	"github.com/4pisky/voeventhub.go/db/migrations"
	"github.com/4pisky/voeventhub.go/lib/logging"
	"github.com/4pisky/voeventhub.go/lib/service"
)

// voeventhubServiceInit wires a service against the database configured in
// the environment. Tests are skipped when no DATABASE_URI is set, so the
// unit suites stay runnable without infrastructure.
func voeventhubServiceInit(t *testing.T) *service.VoeventhubService {
	t.Helper()

	godotenv.Load("../.env")
	if os.Getenv("DATABASE_URI") == "" {
		t.Skip("DATABASE_URI not set, skipping integration test")
	}

	c := &service.Config{}
	err := envconfig.Process("", c)
	if err != nil {
		t.Fatalf("failed to process env: %v", err)
	}

	dbConn, err := db.Open(c)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	if err = migrator.Init(ctx); err != nil {
		t.Fatalf("failed to init migrations: %v", err)
	}
	if _, err = migrator.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return &service.VoeventhubService{
		Config:       c,
		DB:           dbConn,
		Logger:       logging.Logger(c.LogFilePath),
		IngestPubSub: service.NewPubsub(),
	}
}

func clearTables(t *testing.T, svc *service.VoeventhubService) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.DB.ExecContext(ctx, "DELETE FROM cites"); err != nil {
		t.Fatalf("failed to clear cites: %v", err)
	}
	if _, err := svc.DB.ExecContext(ctx, "DELETE FROM voevents"); err != nil {
		t.Fatalf("failed to clear voevents: %v", err)
	}
}

func serviceFilterIvorn(ivorn string) service.VoeventFilter {
	return service.VoeventFilter{IvornContains: ivorn}
}

type testCite struct {
	Ref  string
	Type string
}

// buildPacket assembles a minimal schema-shaped VOEvent document.
func buildPacket(ivorn, role string, cites ...testCite) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<voe:VOEvent xmlns:voe="http://www.ivoa.net/xml/VOEvent/v2.0" ivorn=%q role=%q version="2.0">
  <Who>
    <Date>2020-01-01T12:00:00Z</Date>
    <AuthorIVORN>ivo://test.author/exercises</AuthorIVORN>
  </Who>
`, ivorn, role)
	if len(cites) > 0 {
		b.WriteString("  <Citations>\n")
		for _, cite := range cites {
			fmt.Fprintf(&b, "    <EventIVORN cite=%q>%s</EventIVORN>\n", cite.Type, cite.Ref)
		}
		b.WriteString("    <Description>earlier detections</Description>\n  </Citations>\n")
	}
	b.WriteString("</voe:VOEvent>")
	return []byte(b.String())
}
