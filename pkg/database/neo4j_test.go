package database

import (
	"context"
	"errors"
	"testing"

	"tricy/internal/utils"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	uri       string
	verifyErr error
	closed    int
}

func (d *fakeDriver) VerifyConnectivity(ctx context.Context) error {
	return d.verifyErr
}

func (d *fakeDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) neo4j.SessionWithContext {
	return nil
}

func (d *fakeDriver) Close(ctx context.Context) error {
	d.closed++
	return nil
}

// fakeFactory hands out drivers whose verification fails for the listed URIs.
type fakeFactory struct {
	failing map[string]error
	created []*fakeDriver
}

func (f *fakeFactory) build(uri, username, password string, configure func(*neo4j.Config)) (Driver, error) {
	cfg := &neo4j.Config{}
	configure(cfg)

	d := &fakeDriver{uri: uri, verifyErr: f.failing[uri]}
	f.created = append(f.created, d)
	return d, nil
}

func (f *fakeFactory) uris() []string {
	uris := make([]string, 0, len(f.created))
	for _, d := range f.created {
		uris = append(uris, d.uri)
	}
	return uris
}

func newTestGraphDB(uri string, factory *fakeFactory) *GraphDB {
	return NewGraphDB(&GraphConfig{
		URI:                   uri,
		Username:              "neo4j",
		Password:              "secret",
		AllowInsecureFallback: true,
	}, nil).WithDriverFactory(factory.build)
}

func TestInitializeRequiresURI(t *testing.T) {
	factory := &fakeFactory{}
	db := newTestGraphDB("", factory)

	err := db.Initialize(context.Background())
	assert.ErrorIs(t, err, utils.ErrConfiguration)
	assert.Empty(t, factory.created)
}

func TestInitializeIsIdempotent(t *testing.T) {
	factory := &fakeFactory{}
	db := newTestGraphDB("neo4j://localhost:7687", factory)

	require.NoError(t, db.Initialize(context.Background()))
	require.NoError(t, db.Initialize(context.Background()))

	driver, err := db.Acquire(context.Background())
	require.NoError(t, err)

	assert.Len(t, factory.created, 1)
	assert.Same(t, factory.created[0], driver)
	assert.True(t, db.Connected())
}

func TestInitializeFallsBackToRelaxedCertificates(t *testing.T) {
	factory := &fakeFactory{failing: map[string]error{
		"neo4j+s://db.example.com": errors.New("x509: certificate signed by unknown authority"),
	}}
	db := newTestGraphDB("neo4j+s://db.example.com", factory)

	require.NoError(t, db.Initialize(context.Background()))

	assert.Equal(t, []string{"neo4j+s://db.example.com", "neo4j+ssc://db.example.com"}, factory.uris())
	assert.Equal(t, 1, factory.created[0].closed, "failed driver must be closed")
	assert.Equal(t, "neo4j+ssc://db.example.com", db.URI())
}

func TestInitializeDoubleFailureResetsState(t *testing.T) {
	factory := &fakeFactory{failing: map[string]error{
		"bolt+s://db.example.com":   errors.New("handshake failed"),
		"bolt+ssc://db.example.com": errors.New("connection refused"),
	}}
	db := newTestGraphDB("bolt+s://db.example.com", factory)

	err := db.Initialize(context.Background())
	require.ErrorIs(t, err, utils.ErrConnection)
	assert.Contains(t, err.Error(), "NEO4J_URI")

	assert.Len(t, factory.created, 2, "fallback is attempted exactly once")
	assert.False(t, db.Connected())
	assert.Empty(t, db.URI())

	// a later attempt starts over from the configured URI
	factory.failing = nil
	require.NoError(t, db.Initialize(context.Background()))
	assert.Equal(t, "bolt+s://db.example.com", db.URI())
}

func TestInitializeNoFallbackForPlainScheme(t *testing.T) {
	factory := &fakeFactory{failing: map[string]error{
		"neo4j://localhost:7687": errors.New("connection refused"),
	}}
	db := newTestGraphDB("neo4j://localhost:7687", factory)

	err := db.Initialize(context.Background())
	assert.ErrorIs(t, err, utils.ErrConnection)
	assert.Len(t, factory.created, 1)
}

func TestShutdownIsSafeToRepeat(t *testing.T) {
	factory := &fakeFactory{}
	db := newTestGraphDB("neo4j://localhost:7687", factory)

	require.NoError(t, db.Shutdown(context.Background()))
	require.NoError(t, db.Initialize(context.Background()))
	require.NoError(t, db.Shutdown(context.Background()))
	require.NoError(t, db.Shutdown(context.Background()))

	assert.Equal(t, 1, factory.created[0].closed)
	assert.False(t, db.Connected())
}

func TestReconnectReplacesDriver(t *testing.T) {
	factory := &fakeFactory{}
	db := newTestGraphDB("neo4j://localhost:7687", factory)

	require.NoError(t, db.Initialize(context.Background()))
	require.NoError(t, db.Reconnect(context.Background()))

	require.Len(t, factory.created, 2)
	assert.Equal(t, 1, factory.created[0].closed)

	driver, err := db.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, factory.created[1], driver)
}

func TestConcurrentFailuresShareOneReconnect(t *testing.T) {
	ctx := context.Background()
	factory := &fakeFactory{}
	db := newTestGraphDB("neo4j://localhost:7687", factory)
	require.NoError(t, db.Initialize(ctx))

	// Three requests all failed on the first driver.
	failed := db.Generation()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.ReconnectIfCurrent(ctx, failed))
	}

	require.Len(t, factory.created, 2)
	assert.Equal(t, 1, factory.created[0].closed)
	assert.Zero(t, factory.created[1].closed)
	assert.Equal(t, failed+1, db.Generation())

	require.NoError(t, db.ReconnectIfCurrent(ctx, db.Generation()))
	assert.Len(t, factory.created, 3)
}

func TestReconnectIfCurrentAfterShutdownConnects(t *testing.T) {
	ctx := context.Background()
	factory := &fakeFactory{}
	db := newTestGraphDB("neo4j://localhost:7687", factory)
	require.NoError(t, db.Initialize(ctx))
	stale := db.Generation()
	require.NoError(t, db.Reconnect(ctx))
	require.NoError(t, db.Shutdown(ctx))

	require.NoError(t, db.ReconnectIfCurrent(ctx, stale))
	assert.True(t, db.Connected())
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	conn := &neo4j.ConnectivityError{Inner: errors.New("broken pipe")}
	assert.ErrorIs(t, Classify(conn), utils.ErrUnavailable)

	constraint := &neo4j.Neo4jError{Code: constraintViolationCode, Msg: "already exists"}
	assert.ErrorIs(t, Classify(constraint), utils.ErrConflict)

	syntax := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}
	assert.ErrorIs(t, Classify(syntax), utils.ErrDatabase)

	notFound := utils.NotFoundError("booking")
	assert.Same(t, notFound, Classify(notFound))
}

func TestRelaxedScheme(t *testing.T) {
	tests := []struct {
		uri  string
		want string
		ok   bool
	}{
		{"neo4j+s://a.b:7687", "neo4j+ssc://a.b:7687", true},
		{"bolt+s://a.b", "bolt+ssc://a.b", true},
		{"neo4j://a.b", "", false},
		{"neo4j+ssc://a.b", "", false},
		{"no-scheme", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, ok := relaxedScheme(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
