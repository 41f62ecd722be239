package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	apperrors "socialpulse/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Interaction Operations
// ============================================================================

// CreateInteraction writes a typed, timestamped interaction edge from a
// user to a post in one transaction. Interaction edges are immutable once
// written; a repeated interaction of the same kind keeps the first edge.
// The relationship type is taken from the InteractionKind constant, never
// from raw input.
func (r *Repository) CreateInteraction(ctx context.Context, userID, postID string, kind InteractionKind, ts time.Time) error {
	if !kind.Valid() {
		return apperrors.NewUnknownInteraction(string(kind))
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (u:User {user_id: $userID})
		MATCH (p:Post {post_id: $postID})
		MERGE (u)-[i:%s]->(p)
		ON CREATE SET i.timestamp = datetime($ts)
		RETURN p.post_id as post_id
	`, kind.EdgeType())

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
		"postID": postID,
		"ts":     ts.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return wrapStoreErr(ctx, "create interaction", err)
	}

	if _, err := result.Single(ctx); err != nil {
		return apperrors.NewNodeNotFound("post", postID, err)
	}

	r.logger.Info("Interaction recorded",
		zap.String("user_id", userID),
		zap.String("post_id", postID),
		zap.String("kind", kind.EdgeType()),
	)
	return nil
}

// GetUserInteractions returns the posts a user has liked, commented on
// and shared
func (r *Repository) GetUserInteractions(ctx context.Context, userID string) (*UserInteractions, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})
		OPTIONAL MATCH (u)-[:LIKED_POST]->(lp:Post)
		OPTIONAL MATCH (u)-[:COMMENTED_POST]->(cp:Post)
		OPTIONAL MATCH (u)-[:SHARED_POST]->(sp:Post)
		RETURN collect(DISTINCT lp.post_id) as liked,
		       collect(DISTINCT cp.post_id) as commented,
		       collect(DISTINCT sp.post_id) as shared
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "get user interactions", err)
	}

	if result.Next(ctx) {
		record := result.Record()
		return &UserInteractions{
			UserID:    userID,
			Liked:     getStringSliceFromRecord(record, "liked"),
			Commented: getStringSliceFromRecord(record, "commented"),
			Shared:    getStringSliceFromRecord(record, "shared"),
		}, nil
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "get user interactions", err)
	}

	// Unknown user: empty result, not an error, per the query contract
	return &UserInteractions{
		UserID:    userID,
		Liked:     []string{},
		Commented: []string{},
		Shared:    []string{},
	}, nil
}

// GetPostEngagement returns the users who liked, commented on and shared
// a post
func (r *Repository) GetPostEngagement(ctx context.Context, postID string) (*PostEngagement, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Post {post_id: $postID})
		OPTIONAL MATCH (p)<-[:LIKED_POST]-(lu:User)
		OPTIONAL MATCH (p)<-[:COMMENTED_POST]-(cu:User)
		OPTIONAL MATCH (p)<-[:SHARED_POST]-(su:User)
		RETURN collect(DISTINCT lu.user_id) as liked_by,
		       collect(DISTINCT cu.user_id) as commented_by,
		       collect(DISTINCT su.user_id) as shared_by
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"postID": postID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "get post engagement", err)
	}

	if result.Next(ctx) {
		record := result.Record()
		return &PostEngagement{
			PostID:      postID,
			LikedBy:     getStringSliceFromRecord(record, "liked_by"),
			CommentedBy: getStringSliceFromRecord(record, "commented_by"),
			SharedBy:    getStringSliceFromRecord(record, "shared_by"),
		}, nil
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "get post engagement", err)
	}

	return &PostEngagement{
		PostID:      postID,
		LikedBy:     []string{},
		CommentedBy: []string{},
		SharedBy:    []string{},
	}, nil
}
