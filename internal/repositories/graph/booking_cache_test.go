package graph

import (
	"context"
	"testing"
	"time"

	"tricy/internal/models"
	"tricy/pkg/cache"
	"tricy/pkg/database"
	"tricy/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSession answers each managed transaction with the next queued
// result instead of running the work against a server.
type scriptedSession struct {
	neo4j.SessionWithContext
	results []any
}

func (s *scriptedSession) next() (any, error) {
	if len(s.results) == 0 {
		return nil, assert.AnError
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result, nil
}

func (s *scriptedSession) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	return s.next()
}

func (s *scriptedSession) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	return s.next()
}

func (s *scriptedSession) Close(ctx context.Context) error {
	return nil
}

type scriptedDriver struct {
	session *scriptedSession
}

func (d *scriptedDriver) VerifyConnectivity(ctx context.Context) error { return nil }

func (d *scriptedDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) neo4j.SessionWithContext {
	return d.session
}

func (d *scriptedDriver) Close(ctx context.Context) error { return nil }

func newScriptedGraph(session *scriptedSession) *database.GraphDB {
	driver := &scriptedDriver{session: session}
	return database.NewGraphDB(&database.GraphConfig{URI: "neo4j://scripted:7687"}, logger.NewNop()).
		WithDriverFactory(func(uri, username, password string, configure func(*neo4j.Config)) (database.Driver, error) {
			return driver, nil
		})
}

func TestBookingWritesNeverLeaveStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	accepted := &models.Booking{BookingID: "B1", UserID: "U1", Status: models.BookingStatusAccepted, AssignedAt: &now}
	completed := &models.Booking{BookingID: "B1", UserID: "U1", Status: models.BookingStatusCompleted, AssignedAt: &now, CompletedAt: &now}

	session := &scriptedSession{}
	snapshots := cache.NewMemoryCache()
	repo := NewBookingRepository(newScriptedGraph(session), snapshots, logger.NewNop())

	session.results = append(session.results, accepted)
	got, err := repo.GetByID(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAccepted, got.Status)

	session.results = append(session.results, completed)
	_, err = repo.Complete(ctx, "B1", now)
	require.NoError(t, err)

	// An assignment that committed before the completion returns last.
	session.results = append(session.results, assignOutcome{booking: accepted, accepted: true})
	_, _, err = repo.Assign(ctx, "B1", "D1", now)
	require.NoError(t, err)

	var cached models.Booking
	assert.ErrorIs(t, snapshots.Get(ctx, bookingCacheKey("B1"), &cached), cache.ErrCacheMiss)

	session.results = append(session.results, completed)
	got, err = repo.GetByID(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, got.Status)
	assert.Empty(t, session.results)

	// The read filled the cache, so the next read does not reach the store.
	got, err = repo.GetByID(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, got.Status)
}

func TestAssignReportsWhetherBookingWasAccepted(t *testing.T) {
	ctx := context.Background()
	completed := &models.Booking{BookingID: "B1", Status: models.BookingStatusCompleted}
	session := &scriptedSession{results: []any{assignOutcome{booking: completed}}}
	repo := NewBookingRepository(newScriptedGraph(session), nil, logger.NewNop())

	booking, accepted, err := repo.Assign(ctx, "B1", "D1", time.Now().UTC())

	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, models.BookingStatusCompleted, booking.Status)
}
