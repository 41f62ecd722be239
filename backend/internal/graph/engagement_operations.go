package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Engagement Metrics
// ============================================================================

// Unfiltered counts include legacy interaction edges that predate
// timestamp tracking; the windowed query necessarily excludes them, which
// is the documented degraded state, not an error.
const engagementAllTimeQuery = `
	MATCH (author:User {user_id: $userID})<-[:POSTED_BY]-(p:Post)
	RETURN p.post_id as post_id,
	       count { (p)<-[:LIKED_POST]-(:User) } as likes,
	       count { (p)<-[:COMMENTED_POST]-(:User) } as comments,
	       count { (p)<-[:SHARED_POST]-(:User) } as shares
	ORDER BY post_id ASC
`

const engagementWindowedQuery = `
	MATCH (author:User {user_id: $userID})<-[:POSTED_BY]-(p:Post)
	RETURN p.post_id as post_id,
	       count { MATCH (p)<-[l:LIKED_POST]-(:User)
	               WHERE l.timestamp >= datetime($start) AND l.timestamp <= datetime($end) } as likes,
	       count { MATCH (p)<-[c:COMMENTED_POST]-(:User)
	               WHERE c.timestamp >= datetime($start) AND c.timestamp <= datetime($end) } as comments,
	       count { MATCH (p)<-[s:SHARED_POST]-(:User)
	               WHERE s.timestamp >= datetime($start) AND s.timestamp <= datetime($end) } as shares
	ORDER BY post_id ASC
`

// EngagementMetrics traverses userID's authored posts and counts incoming
// interaction edges, optionally bounded to the inclusive [start, end]
// window. Nil bounds mean all-time counts.
func (r *Repository) EngagementMetrics(ctx context.Context, userID string, start, end *time.Time) (*Metrics, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := engagementAllTimeQuery
	params := map[string]interface{}{"userID": userID}
	if start != nil || end != nil {
		// An open bound falls back to the epoch / far future so one
		// windowed query covers half-open requests
		s, e := windowBounds(start, end)
		query = engagementWindowedQuery
		params["start"] = s.UTC().Format(time.RFC3339)
		params["end"] = e.UTC().Format(time.RFC3339)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, wrapStoreErr(ctx, "engagement metrics", err)
	}

	metrics := &Metrics{Posts: []PostMetrics{}}
	for result.Next(ctx) {
		record := result.Record()
		pm := PostMetrics{
			PostID:   getStringFromRecord(record, "post_id"),
			Likes:    getInt64FromRecord(record, "likes"),
			Comments: getInt64FromRecord(record, "comments"),
			Shares:   getInt64FromRecord(record, "shares"),
		}
		metrics.Posts = append(metrics.Posts, pm)
		metrics.TotalLikes += pm.Likes
		metrics.TotalComments += pm.Comments
		metrics.TotalShares += pm.Shares
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "engagement metrics", err)
	}

	metrics.PostCount = len(metrics.Posts)
	return metrics, nil
}

// FollowerGrowth returns every follower with the FOLLOWS edge timestamp,
// oldest first. Followers on edges without a timestamp are omitted;
// callers derive cumulative counts by date bucket.
func (r *Repository) FollowerGrowth(ctx context.Context, userID string) ([]FollowerSince, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})<-[f:FOLLOWS]-(follower:User)
		WHERE f.timestamp IS NOT NULL
		RETURN follower.user_id as user_id, f.timestamp as followed_at
		ORDER BY followed_at ASC, user_id ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return nil, wrapStoreErr(ctx, "follower growth", err)
	}

	growth := []FollowerSince{}
	for result.Next(ctx) {
		record := result.Record()
		followedAt, ok := getTimeFromRecord(record, "followed_at")
		if !ok {
			continue
		}
		growth = append(growth, FollowerSince{
			UserID:     getStringFromRecord(record, "user_id"),
			FollowedAt: followedAt,
		})
	}
	if err := result.Err(); err != nil {
		return nil, wrapStoreErr(ctx, "follower growth", err)
	}

	return growth, nil
}

func windowBounds(start, end *time.Time) (time.Time, time.Time) {
	s := time.Unix(0, 0)
	e := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}
	return s, e
}
