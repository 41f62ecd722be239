package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Scoring Support Operations
// ============================================================================

// FolloweeInteractionCounts counts userID's interaction edges against posts
// authored by each of the given followees, one round trip for the whole
// batch. Callers page through large follow-out-degrees with the configured
// batch size.
func (r *Repository) FolloweeInteractionCounts(ctx context.Context, userID string, followeeIDs []string) (map[string]InteractionCounts, error) {
	counts := make(map[string]InteractionCounts, len(followeeIDs))
	if len(followeeIDs) == 0 {
		return counts, nil
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})
		UNWIND $followeeIDs AS fid
		MATCH (f:User {user_id: fid})
		RETURN fid as user_id,
		       count { (u)-[:LIKED_POST]->(:Post)-[:POSTED_BY]->(f) } as likes,
		       count { (u)-[:COMMENTED_POST]->(:Post)-[:POSTED_BY]->(f) } as comments,
		       count { (u)-[:SHARED_POST]->(:Post)-[:POSTED_BY]->(f) } as shares
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":      userID,
		"followeeIDs": followeeIDs,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "followee interaction counts", err)
	}

	for result.Next(ctx) {
		record := result.Record()
		counts[getStringFromRecord(record, "user_id")] = InteractionCounts{
			Likes:    getInt64FromRecord(record, "likes"),
			Comments: getInt64FromRecord(record, "comments"),
			Shares:   getInt64FromRecord(record, "shares"),
		}
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "followee interaction counts", err)
	}

	return counts, nil
}

// SetFollowStrengths writes the relationship_strength facet on userID's
// FOLLOWS edges, all in one transaction. Concurrent writers race
// last-writer-wins on the facet value.
func (r *Repository) SetFollowStrengths(ctx context.Context, userID string, strengths map[string]float64) error {
	if len(strengths) == 0 {
		return nil
	}

	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	rows := make([]map[string]interface{}, 0, len(strengths))
	for followeeID, strength := range strengths {
		rows = append(rows, map[string]interface{}{
			"user_id":  followeeID,
			"strength": strength,
		})
	}

	query := `
		UNWIND $rows AS row
		MATCH (u:User {user_id: $userID})-[f:FOLLOWS]->(v:User {user_id: row.user_id})
		SET f.relationship_strength = row.strength
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
		"rows":   rows,
	})
	if err != nil {
		return wrapStoreErr(ctx, "set follow strengths", err)
	}

	r.logger.Debug("Follow strengths updated",
		zap.String("user_id", userID),
		zap.Int("edges", len(strengths)),
	)
	return nil
}
