package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "socialpulse/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Follow Relationship Operations
// ============================================================================

// CreateFollow writes a FOLLOWS edge with the given timestamp and initial
// strength. Both users must already be resolved; the write is one
// transaction that commits or discards atomically. Re-following is a no-op
// on the existing edge.
func (r *Repository) CreateFollow(ctx context.Context, followerID, followedID string, ts time.Time, strength float64) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $followerID})
		MATCH (b:User {user_id: $followedID})
		MERGE (a)-[f:FOLLOWS]->(b)
		ON CREATE SET
			f.timestamp = datetime($ts),
			f.relationship_strength = $strength
		RETURN f.relationship_strength as strength
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"followerID": followerID,
		"followedID": followedID,
		"ts":         ts.UTC().Format(time.RFC3339),
		"strength":   strength,
	})
	if err != nil {
		return wrapStoreErr(ctx, "create follow", err)
	}

	if _, err := result.Single(ctx); err != nil {
		// MATCH found no row: one of the endpoints is gone
		return apperrors.NewNodeNotFound("user", followerID+"->"+followedID, err)
	}

	r.logger.Info("Follow edge created",
		zap.String("follower_id", followerID),
		zap.String("followed_id", followedID),
	)
	return nil
}

// ListFollowing returns the users a user follows, each with the edge's
// strength facet and the followee's own one-hop following set. The second
// hop is finite and materialized for visualization and community use.
func (r *Repository) ListFollowing(ctx context.Context, userID string) ([]Followee, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})-[f:FOLLOWS]->(v:User)
		OPTIONAL MATCH (v)-[:FOLLOWS]->(w:User)
		WITH v, f, collect(DISTINCT w.user_id) as following
		RETURN v.user_id as user_id,
		       f.relationship_strength as strength,
		       following
		ORDER BY user_id ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "list following", err)
	}

	followees := []Followee{}
	for result.Next(ctx) {
		record := result.Record()
		followees = append(followees, Followee{
			UserID:    getStringFromRecord(record, "user_id"),
			Strength:  getFloat64FromRecord(record, "strength"),
			Following: getStringSliceFromRecord(record, "following"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "list following", err)
	}

	return followees, nil
}

// ListFollowers returns the identifiers of users following the given user
func (r *Repository) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})<-[:FOLLOWS]-(f:User)
		RETURN f.user_id as user_id
		ORDER BY user_id ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "list followers", err)
	}

	followers := []string{}
	for result.Next(ctx) {
		followers = append(followers, getStringFromRecord(result.Record(), "user_id"))
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "list followers", err)
	}

	return followers, nil
}

// ListMutuals returns users that userID follows and is followed by
func (r *Repository) ListMutuals(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})-[:FOLLOWS]->(m:User)-[:FOLLOWS]->(u)
		RETURN m.user_id as user_id
		ORDER BY user_id ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "list mutuals", err)
	}

	mutuals := []string{}
	for result.Next(ctx) {
		mutuals = append(mutuals, getStringFromRecord(result.Record(), "user_id"))
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "list mutuals", err)
	}

	return mutuals, nil
}
