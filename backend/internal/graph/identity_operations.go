package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "socialpulse/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Identity Resolution
// ============================================================================
//
// Resolution is a conditional upsert: one MERGE statement per identifier,
// never a separate read followed by a create. Concurrent resolvers for the
// same unseen identifier converge on one node; the uniqueness constraint
// rejects any duplicate the store itself lets slip through. Callers must
// treat resolution as a write.

// ResolveUser looks up a user by user_id, creating the node on first
// reference. It fails with a NotFound error only when the store cannot
// perform the create.
func (r *Repository) ResolveUser(ctx context.Context, userID string) error {
	// The shared call must not die with whichever caller happened to get
	// there first; it runs detached under its own store timeout.
	detached := context.WithoutCancel(ctx)
	_, err, _ := r.resolveGroup.Do("user:"+userID, func() (interface{}, error) {
		return nil, r.resolveNode(detached, "user", userID)
	})
	return err
}

// ResolvePost looks up a post by post_id, creating the node on first
// reference. Interactions may reference posts not yet bulk-loaded, so
// lazy creation here is intentional.
func (r *Repository) ResolvePost(ctx context.Context, postID string) error {
	detached := context.WithoutCancel(ctx)
	_, err, _ := r.resolveGroup.Do("post:"+postID, func() (interface{}, error) {
		return nil, r.resolveNode(detached, "post", postID)
	})
	return err
}

func (r *Repository) resolveNode(ctx context.Context, kind, id string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	var query string
	switch kind {
	case "user":
		query = `
			MERGE (u:User {user_id: $id})
			ON CREATE SET u.created_at = datetime($now)
			RETURN u.user_id as id
		`
	default:
		query = `
			MERGE (p:Post {post_id: $id})
			ON CREATE SET p.created_at = datetime($now)
			RETURN p.post_id as id
		`
	}

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":  id,
		"now": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return apperrors.NewNodeNotFound(kind, id, err)
	}

	if _, err := result.Single(ctx); err != nil {
		return apperrors.NewNodeNotFound(kind, id, err)
	}

	r.logger.Debug("Identity resolved",
		zap.String("kind", kind),
		zap.String("id", id),
	)
	return nil
}
