package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "socialpulse/backend/pkg/errors"
	"socialpulse/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver  neo4j.DriverWithContext
	logger  *zap.Logger
	timeout time.Duration

	// collapses concurrent resolutions of the same identifier onto one
	// MERGE round trip; the uniqueness constraints remain authoritative
	resolveGroup singleflight.Group
}

// NewRepository creates a new graph repository. The timeout bounds every
// store round trip.
func NewRepository(driver neo4j.DriverWithContext, timeout time.Duration) *Repository {
	return &Repository{
		driver:  driver,
		logger:  logger.Get(),
		timeout: timeout,
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// opContext derives a per-operation context so a slow or unreachable store
// surfaces as a typed failure instead of hanging the caller
func (r *Repository) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// wrapStoreErr maps driver and context failures to the error taxonomy
func wrapStoreErr(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr == context.Canceled {
		return apperrors.NewContextCancelled(operation, err)
	}
	return apperrors.NewStoreUnavailable(operation, err)
}

// EnsureConstraints creates the uniqueness constraints on user_id and
// post_id. These back the identity-resolution upsert: when two concurrent
// callers race on an unseen identifier, the store rejects the duplicate.
func (r *Repository) EnsureConstraints(ctx context.Context) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	constraints := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.user_id IS UNIQUE`,
		`CREATE CONSTRAINT post_id_unique IF NOT EXISTS FOR (p:Post) REQUIRE p.post_id IS UNIQUE`,
	}

	for _, stmt := range constraints {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return wrapStoreErr(ctx, "ensure constraints", err)
		}
	}

	r.logger.Info("Uniqueness constraints ensured")
	return nil
}

// DropAllData deletes every node and edge. Destructive, administrative.
func (r *Repository) DropAllData(ctx context.Context) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
	if err != nil {
		return wrapStoreErr(ctx, "drop all data", err)
	}

	r.logger.Warn("All graph data dropped")
	return nil
}
