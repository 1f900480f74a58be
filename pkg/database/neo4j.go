package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tricy/internal/utils"
	"tricy/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const constraintViolationCode = "Neo.ClientError.Schema.ConstraintValidationFailed"

type GraphConfig struct {
	URI                     string
	Username                string
	Password                string
	Database                string
	MaxConnectionPoolSize   int
	ConnectionTimeout       time.Duration
	MaxTransactionRetryTime time.Duration
	AllowInsecureFallback   bool
}

// Driver is the part of neo4j.DriverWithContext the provider relies on.
type Driver interface {
	VerifyConnectivity(ctx context.Context) error
	NewSession(ctx context.Context, config neo4j.SessionConfig) neo4j.SessionWithContext
	Close(ctx context.Context) error
}

// DriverFactory builds a driver for uri. Swapped out in tests.
type DriverFactory func(uri, username, password string, configure func(*neo4j.Config)) (Driver, error)

func defaultDriverFactory(uri, username, password string, configure func(*neo4j.Config)) (Driver, error) {
	return neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), configure)
}

// GraphDB owns the process-wide Neo4j driver. The driver is created lazily on
// first use and shared by every session; sessions are opened per operation.
type GraphDB struct {
	config  *GraphConfig
	logger  *logger.Logger
	factory DriverFactory

	mu     sync.Mutex
	driver Driver
	uri    string
	// generation increments every time a driver is installed.
	generation uint64
}

func NewGraphDB(config *GraphConfig, log *logger.Logger) *GraphDB {
	if log == nil {
		log = logger.NewNop()
	}
	return &GraphDB{
		config:  config,
		logger:  log.WithField("component", "graphdb"),
		factory: defaultDriverFactory,
	}
}

// WithDriverFactory replaces the driver constructor.
func (g *GraphDB) WithDriverFactory(factory DriverFactory) *GraphDB {
	g.factory = factory
	return g
}

// Initialize connects to the configured URI. It is a no-op once a driver
// exists. When a secure scheme fails verification it retries once with
// certificate validation disabled.
func (g *GraphDB) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.initializeLocked(ctx)
}

func (g *GraphDB) initializeLocked(ctx context.Context) error {
	if g.driver != nil {
		return nil
	}

	if g.config == nil || strings.TrimSpace(g.config.URI) == "" {
		return utils.NewError(utils.KindConfiguration, "NEO4J_URI is not set")
	}

	driver, err := g.connect(ctx, g.config.URI)
	if err == nil {
		g.install(driver, g.config.URI)
		g.logger.WithField("uri", g.config.URI).Info("Connected to Neo4j")
		return nil
	}

	fallback, ok := relaxedScheme(g.config.URI)
	if !ok || !g.config.AllowInsecureFallback {
		g.reset()
		return connectionError(err)
	}

	g.logger.WithError(err).WithFields(map[string]interface{}{
		"uri":          g.config.URI,
		"fallback_uri": fallback,
	}).Warn("Secure Neo4j connection failed, retrying without certificate validation")

	driver, fallbackErr := g.connect(ctx, fallback)
	if fallbackErr != nil {
		g.reset()
		return connectionError(errors.Join(err, fallbackErr))
	}

	g.install(driver, fallback)
	g.logger.WithField("uri", fallback).Warn("Connected to Neo4j WITHOUT certificate validation; fix the server certificate or trust store")
	return nil
}

func (g *GraphDB) connect(ctx context.Context, uri string) (Driver, error) {
	driver, err := g.factory(uri, g.config.Username, g.config.Password, func(c *neo4j.Config) {
		if g.config.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = g.config.MaxConnectionPoolSize
		}
		if g.config.ConnectionTimeout > 0 {
			c.ConnectionAcquisitionTimeout = g.config.ConnectionTimeout
		}
		if g.config.MaxTransactionRetryTime > 0 {
			c.MaxTransactionRetryTime = g.config.MaxTransactionRetryTime
		}
	})
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		if closeErr := driver.Close(ctx); closeErr != nil {
			g.logger.WithError(closeErr).Debug("Failed to close unverified driver")
		}
		return nil, err
	}

	return driver, nil
}

func (g *GraphDB) install(driver Driver, uri string) {
	g.driver = driver
	g.uri = uri
	g.generation++
}

func (g *GraphDB) reset() {
	g.driver = nil
	g.uri = ""
}

// Acquire returns the shared driver, initializing it on first use.
func (g *GraphDB) Acquire(ctx context.Context) (Driver, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.initializeLocked(ctx); err != nil {
		return nil, err
	}
	return g.driver, nil
}

// Shutdown closes the driver. Calling it without a live driver is a no-op.
func (g *GraphDB) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.shutdownLocked(ctx)
}

func (g *GraphDB) shutdownLocked(ctx context.Context) error {
	if g.driver == nil {
		return nil
	}

	err := g.driver.Close(ctx)
	g.reset()
	if err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}

	g.logger.Info("Neo4j driver closed")
	return nil
}

// Reconnect drops the current driver and builds a new one.
func (g *GraphDB) Reconnect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.reconnectLocked(ctx)
}

// Generation identifies the driver currently in use.
func (g *GraphDB) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation
}

// ReconnectIfCurrent rebuilds the driver only when generation still names
// the live one. Callers that failed on a driver somebody else already
// replaced keep the replacement instead of closing it under its sessions.
func (g *GraphDB) ReconnectIfCurrent(ctx context.Context, generation uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.driver != nil && g.generation != generation {
		g.logger.WithField("generation", g.generation).Debug("Driver already replaced, skipping reconnect")
		return nil
	}
	return g.reconnectLocked(ctx)
}

func (g *GraphDB) reconnectLocked(ctx context.Context) error {
	if err := g.shutdownLocked(ctx); err != nil {
		g.logger.WithError(err).Warn("Ignoring close error during reconnect")
	}
	return g.initializeLocked(ctx)
}

// Connected reports whether a driver is currently held.
func (g *GraphDB) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.driver != nil
}

// URI is the address actually in use, which differs from the configured one
// after a relaxed-certificate fallback.
func (g *GraphDB) URI() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.uri
}

func (g *GraphDB) Health(ctx context.Context) error {
	driver, err := g.Acquire(ctx)
	if err != nil {
		return err
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(healthCtx); err != nil {
		return Classify(err)
	}
	return nil
}

// ExecuteRead runs work in a managed read transaction on a fresh session.
func (g *GraphDB) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	return g.execute(ctx, neo4j.AccessModeRead, work)
}

// ExecuteWrite runs work in a managed write transaction on a fresh session.
func (g *GraphDB) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	return g.execute(ctx, neo4j.AccessModeWrite, work)
}

func (g *GraphDB) execute(ctx context.Context, mode neo4j.AccessMode, work neo4j.ManagedTransactionWork) (any, error) {
	driver, err := g.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: g.config.Database,
		AccessMode:   mode,
	})
	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil {
			g.logger.WithError(closeErr).Debug("Failed to close session")
		}
	}()

	var result any
	if mode == neo4j.AccessModeRead {
		result, err = session.ExecuteRead(ctx, work)
	} else {
		result, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, Classify(err)
	}
	return result, nil
}

var constraints = []struct {
	name     string
	label    string
	property string
}{
	{"user_id_unique", "User", "user_id"},
	{"user_email_unique", "User", "email"},
	{"driver_id_unique", "Driver", "driver_id"},
	{"booking_id_unique", "Booking", "booking_id"},
	{"transaction_id_unique", "Transaction", "transaction_id"},
	{"notification_id_unique", "Notification", "notification_id"},
}

// EnsureConstraints creates the uniqueness constraints the repositories rely
// on. Safe to run on every start.
func (g *GraphDB) EnsureConstraints(ctx context.Context) error {
	for _, c := range constraints {
		cypher := fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE", c.name, c.label, c.property)
		_, err := g.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, cypher, nil)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to create constraint %s: %w", c.name, err)
		}
	}

	g.logger.WithField("count", len(constraints)).Info("Graph constraints ensured")
	return nil
}

// Classify maps driver errors onto application error kinds. Connectivity
// problems become ErrUnavailable, uniqueness violations ErrConflict and the
// rest ErrDatabase. AppErrors pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var connErr *neo4j.ConnectivityError
	var limitErr *neo4j.TransactionExecutionLimit
	if errors.As(err, &connErr) || errors.As(err, &limitErr) || neo4j.IsConnectivityError(err) {
		return utils.WrapError(utils.KindUnavailable, "graph store unavailable", err)
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == constraintViolationCode {
		return utils.WrapError(utils.KindConflict, "entity already exists", err)
	}

	return utils.WrapError(utils.KindDatabase, "graph query failed", err)
}

// relaxedScheme returns uri with its secure scheme swapped for the variant
// that skips certificate validation.
func relaxedScheme(uri string) (string, bool) {
	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return "", false
	}

	switch strings.ToLower(scheme) {
	case "neo4j+s":
		return "neo4j+ssc://" + rest, true
	case "bolt+s":
		return "bolt+ssc://" + rest, true
	default:
		return "", false
	}
}

func connectionError(cause error) error {
	return utils.WrapError(utils.KindConnection,
		"could not connect to Neo4j; check NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD", cause)
}
