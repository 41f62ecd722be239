package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Bulk Load Operations
// ============================================================================
//
// Each bulk write is a single UNWIND statement, so the whole surviving
// batch commits once and discards atomically on failure. Row validation
// and skip counting happen in the engine before rows reach here.

// BulkCreateUsers upserts user nodes for the given identifiers
func (r *Repository) BulkCreateUsers(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		UNWIND $ids AS id
		MERGE (u:User {user_id: id})
		ON CREATE SET u.created_at = datetime($now)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"ids": userIDs,
		"now": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return wrapStoreErr(ctx, "bulk create users", err)
	}

	r.logger.Info("Users loaded", zap.Int("count", len(userIDs)))
	return nil
}

// BulkCreatePosts upserts post nodes, linking each to its author via
// POSTED_BY when an author is present
func (r *Repository) BulkCreatePosts(ctx context.Context, rows []PostRecord) error {
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		params = append(params, map[string]interface{}{
			"post_id":   row.PostID,
			"author_id": row.AuthorID,
			"content":   row.Content,
		})
	}

	query := `
		UNWIND $rows AS row
		MERGE (p:Post {post_id: row.post_id})
		ON CREATE SET p.created_at = datetime($now)
		FOREACH (_ IN CASE WHEN row.content <> '' THEN [1] ELSE [] END |
			SET p.content = row.content
		)
		FOREACH (aid IN CASE WHEN row.author_id <> '' THEN [row.author_id] ELSE [] END |
			MERGE (a:User {user_id: aid})
			MERGE (p)-[:POSTED_BY]->(a)
			SET p.author_id = aid
		)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"rows": params,
		"now":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return wrapStoreErr(ctx, "bulk create posts", err)
	}

	r.logger.Info("Posts loaded", zap.Int("count", len(rows)))
	return nil
}

// BulkCreateFollows upserts FOLLOWS edges, creating endpoint users as
// needed. Bulk-loaded edges start at the minimum strength.
func (r *Repository) BulkCreateFollows(ctx context.Context, rows []FollowRecord, strength float64) error {
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		params = append(params, map[string]interface{}{
			"follower_id": row.FollowerID,
			"followed_id": row.FollowedID,
			"ts":          row.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	query := `
		UNWIND $rows AS row
		MERGE (a:User {user_id: row.follower_id})
		MERGE (b:User {user_id: row.followed_id})
		MERGE (a)-[f:FOLLOWS]->(b)
		ON CREATE SET
			f.timestamp = datetime(row.ts),
			f.relationship_strength = $strength
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"rows":     params,
		"strength": strength,
	})
	if err != nil {
		return wrapStoreErr(ctx, "bulk create follows", err)
	}

	r.logger.Info("Follow edges loaded", zap.Int("count", len(rows)))
	return nil
}

// BulkCreateInteractions upserts typed interaction edges, creating
// endpoint users and posts as needed. A single statement covers all three
// kinds so the batch still commits once.
func (r *Repository) BulkCreateInteractions(ctx context.Context, rows []InteractionRecord) error {
	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		params = append(params, map[string]interface{}{
			"user_id": row.UserID,
			"post_id": row.PostID,
			"kind":    row.Kind.EdgeType(),
			"ts":      row.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	query := `
		UNWIND $rows AS row
		MERGE (u:User {user_id: row.user_id})
		MERGE (p:Post {post_id: row.post_id})
		FOREACH (_ IN CASE WHEN row.kind = 'LIKED_POST' THEN [1] ELSE [] END |
			MERGE (u)-[l:LIKED_POST]->(p)
			ON CREATE SET l.timestamp = datetime(row.ts)
		)
		FOREACH (_ IN CASE WHEN row.kind = 'COMMENTED_POST' THEN [1] ELSE [] END |
			MERGE (u)-[c:COMMENTED_POST]->(p)
			ON CREATE SET c.timestamp = datetime(row.ts)
		)
		FOREACH (_ IN CASE WHEN row.kind = 'SHARED_POST' THEN [1] ELSE [] END |
			MERGE (u)-[s:SHARED_POST]->(p)
			ON CREATE SET s.timestamp = datetime(row.ts)
		)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"rows": params,
	})
	if err != nil {
		return wrapStoreErr(ctx, "bulk create interactions", err)
	}

	r.logger.Info("Interaction edges loaded", zap.Int("count", len(rows)))
	return nil
}
