package graph

import (
	"context"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Analytics Queries
// ============================================================================

// RankInfluencers returns users whose incoming FOLLOWS count meets the
// threshold, sorted descending by count with identifier ascending as
// tiebreak for determinism
func (r *Repository) RankInfluencers(ctx context.Context, minFollowers int64) ([]Influencer, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User)<-[:FOLLOWS]-(f:User)
		WITH u, count(f) as follower_count
		WHERE follower_count >= $minFollowers
		RETURN u.user_id as user_id, follower_count
		ORDER BY follower_count DESC, user_id ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"minFollowers": minFollowers,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "rank influencers", err)
	}

	influencers := []Influencer{}
	for result.Next(ctx) {
		record := result.Record()
		influencers = append(influencers, Influencer{
			UserID:        getStringFromRecord(record, "user_id"),
			FollowerCount: getInt64FromRecord(record, "follower_count"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "rank influencers", err)
	}

	return influencers, nil
}

// DetectCommunityTriangles finds closed 3-cycles through userID under
// FOLLOWS. Each cluster's identifiers are sorted lexicographically before
// dedup so a cycle found in either direction collapses to one triangle.
func (r *Repository) DetectCommunityTriangles(ctx context.Context, userID string) ([]Triangle, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})-[:FOLLOWS]->(a:User)-[:FOLLOWS]->(b:User)-[:FOLLOWS]->(u)
		WHERE a.user_id <> $userID AND b.user_id <> $userID AND a.user_id <> b.user_id
		RETURN a.user_id as a, b.user_id as b
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "detect community triangles", err)
	}

	raw := []Triangle{}
	for result.Next(ctx) {
		record := result.Record()
		raw = append(raw, NewTriangle(
			userID,
			getStringFromRecord(record, "a"),
			getStringFromRecord(record, "b"),
		))
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "detect community triangles", err)
	}

	return DedupeTriangles(raw), nil
}

// FindShortestPath returns the ordered user identifiers on the shortest
// FOLLOWS path from src to dst, [src] when src == dst, and an empty
// sequence when unreachable
func (r *Repository) FindShortestPath(ctx context.Context, srcID, dstID string) ([]string, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $srcID}), (b:User {user_id: $dstID})
		MATCH p = shortestPath((a)-[:FOLLOWS*0..]->(b))
		RETURN [n IN nodes(p) | n.user_id] as path
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"srcID": srcID,
		"dstID": dstID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "find shortest path", err)
	}

	if result.Next(ctx) {
		return getStringSliceFromRecord(result.Record(), "path"), nil
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "find shortest path", err)
	}

	// Unreachable or unresolved endpoints
	return []string{}, nil
}

// ============================================================================
// Triangle Normalization
// ============================================================================

// NewTriangle builds a triangle with its identifiers sorted
// lexicographically
func NewTriangle(x, y, z string) Triangle {
	t := Triangle{x, y, z}
	sort.Strings(t[:])
	return t
}

// DedupeTriangles removes duplicate triangles, preserving lexicographic
// order of the result
func DedupeTriangles(triangles []Triangle) []Triangle {
	seen := make(map[Triangle]struct{}, len(triangles))
	out := make([]Triangle, 0, len(triangles))
	for _, t := range triangles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		for k := 0; k < 3; k++ {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}
