package integration_tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4pisky/voeventhub.go/common"
	"github.com/4pisky/voeventhub.go/lib/service"
)

func TestFilterByRoleKeepsInsertionOrder(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	roles := []string{common.RoleObservation, common.RolePrediction, common.RoleObservation}
	for i, role := range roles {
		ivorn := fmt.Sprintf("ivo://test.stream/alpha#%d", i)
		_, err := svc.Ingest(ctx, buildPacket(ivorn, role), time.Now().UTC())
		require.NoError(t, err)
	}

	observations, err := svc.Voevents(ctx, service.VoeventFilter{Role: common.RoleObservation})
	require.NoError(t, err)

	require.Len(t, observations, 2)
	assert.Equal(t, "ivo://test.stream/alpha#0", observations[0].Ivorn)
	assert.Equal(t, "ivo://test.stream/alpha#2", observations[1].Ivorn)
	assert.Less(t, observations[0].ID, observations[1].ID)
}

func TestFilterByStream(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	for _, ivorn := range []string{
		"ivo://test.stream/alpha#1",
		"ivo://test.stream/beta#1",
		"ivo://test.stream/alpha#2",
	} {
		_, err := svc.Ingest(ctx, buildPacket(ivorn, common.RoleTest), time.Now().UTC())
		require.NoError(t, err)
	}

	alpha, err := svc.Voevents(ctx, service.VoeventFilter{Stream: "test.stream/alpha"})
	require.NoError(t, err)
	assert.Len(t, alpha, 2)

	beta, err := svc.Voevents(ctx, service.VoeventFilter{Stream: "test.stream/beta"})
	require.NoError(t, err)
	assert.Len(t, beta, 1)

	none, err := svc.Voevents(ctx, service.VoeventFilter{Stream: "test.stream/gamma"})
	require.NoError(t, err)
	assert.Len(t, none, 0)
}

func TestFilterByReceivedWindow(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	base := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ivorn := fmt.Sprintf("ivo://test.stream/window#%d", i)
		_, err := svc.Ingest(ctx, buildPacket(ivorn, common.RoleTest), base.AddDate(0, 0, i))
		require.NoError(t, err)
	}

	middle, err := svc.Voevents(ctx, service.VoeventFilter{
		ReceivedAfter:  base.AddDate(0, 0, 1),
		ReceivedBefore: base.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	require.Len(t, middle, 1)
	assert.Equal(t, "ivo://test.stream/window#1", middle[0].Ivorn)
}

func TestFilterByCitedIvorn(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	target := "ivo://test.stream/alpha#0"
	_, err := svc.Ingest(ctx, buildPacket(target, common.RoleObservation), time.Now().UTC())
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, buildPacket("ivo://test.stream/alpha#1", common.RoleObservation,
		testCite{Ref: target, Type: common.CiteTypeFollowup}), time.Now().UTC())
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, buildPacket("ivo://test.stream/alpha#2", common.RoleObservation), time.Now().UTC())
	require.NoError(t, err)

	citing, err := svc.Voevents(ctx, service.VoeventFilter{Cited: target})
	require.NoError(t, err)
	require.Len(t, citing, 1)
	assert.Equal(t, "ivo://test.stream/alpha#1", citing[0].Ivorn)
}

func TestListLimitOffsetAndOrder(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ivorn := fmt.Sprintf("ivo://test.stream/page#%d", i)
		_, err := svc.Ingest(ctx, buildPacket(ivorn, common.RoleTest), time.Now().UTC())
		require.NoError(t, err)
	}

	page, err := svc.Voevents(ctx, service.VoeventFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ivo://test.stream/page#2", page[0].Ivorn)
	assert.Equal(t, "ivo://test.stream/page#3", page[1].Ivorn)

	newestFirst, err := svc.Voevents(ctx, service.VoeventFilter{Limit: 1, Descending: true})
	require.NoError(t, err)
	require.Len(t, newestFirst, 1)
	assert.Equal(t, "ivo://test.stream/page#4", newestFirst[0].Ivorn)
}

func TestListLeavesCitesAndXMLUnloaded(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, buildPacket("ivo://test.stream/lazy#1", common.RoleObservation,
		testCite{Ref: "ivo://test.stream/lazy#0", Type: common.CiteTypeFollowup}), time.Now().UTC())
	require.NoError(t, err)

	listed, err := svc.Voevents(ctx, service.VoeventFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].XML)
	assert.Empty(t, listed[0].Cites)

	withCites, err := svc.Voevents(ctx, service.VoeventFilter{WithCites: true})
	require.NoError(t, err)
	require.Len(t, withCites, 1)
	assert.Len(t, withCites[0].Cites, 1)
}

func TestStreamCounts(t *testing.T) {
	svc := voeventhubServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	for _, ivorn := range []string{
		"ivo://test.stream/alpha#1",
		"ivo://test.stream/alpha#2",
		"ivo://test.stream/beta#1",
	} {
		_, err := svc.Ingest(ctx, buildPacket(ivorn, common.RoleTest), time.Now().UTC())
		require.NoError(t, err)
	}

	counts, err := svc.StreamCounts(ctx)
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, service.StreamCount{Stream: "test.stream/alpha", Count: 2}, counts[0])
	assert.Equal(t, service.StreamCount{Stream: "test.stream/beta", Count: 1}, counts[1])
}
