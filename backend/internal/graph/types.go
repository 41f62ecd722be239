package graph

import "time"

// ============================================================================
// Graph Types
// ============================================================================

// InteractionKind is one of the typed user-to-post interaction edges
type InteractionKind string

const (
	InteractionLike    InteractionKind = "LIKED_POST"
	InteractionComment InteractionKind = "COMMENTED_POST"
	InteractionShare   InteractionKind = "SHARED_POST"
)

// EdgeType returns the relationship type for this interaction. Only the
// three declared constants are valid; queries are built from this value,
// never from raw caller input.
func (k InteractionKind) EdgeType() string {
	return string(k)
}

// Valid reports whether k is one of the declared interaction kinds
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionLike, InteractionComment, InteractionShare:
		return true
	}
	return false
}

// Followee is one outgoing FOLLOWS edge of a user, including the followee's
// own one-hop following set for visualization
type Followee struct {
	UserID    string   `json:"user_id"`
	Strength  float64  `json:"relationship_strength"`
	Following []string `json:"following,omitempty"`
}

// Influencer is a user ranked by incoming FOLLOWS count
type Influencer struct {
	UserID        string `json:"user_id"`
	FollowerCount int64  `json:"follower_count"`
}

// Triangle is a closed 3-cycle of FOLLOWS edges, identifiers sorted
// lexicographically
type Triangle [3]string

// InteractionCounts holds per-kind interaction counts from one user
// against one followee's posts
type InteractionCounts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

// PostMetrics holds engagement counts for a single post
type PostMetrics struct {
	PostID   string `json:"post_id"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
	Shares   int64  `json:"shares"`
}

// Metrics aggregates engagement over all of a user's authored posts
type Metrics struct {
	Posts         []PostMetrics `json:"posts"`
	PostCount     int           `json:"post_count"`
	TotalLikes    int64         `json:"total_likes"`
	TotalComments int64         `json:"total_comments"`
	TotalShares   int64         `json:"total_shares"`
}

// Total returns the sum of all engagement counts
func (m *Metrics) Total() int64 {
	return m.TotalLikes + m.TotalComments + m.TotalShares
}

// FollowerSince is a follower paired with the FOLLOWS edge timestamp.
// Followers whose edge predates timestamp tracking are omitted.
type FollowerSince struct {
	UserID     string    `json:"user_id"`
	FollowedAt time.Time `json:"followed_at"`
}

// UserInteractions lists the posts a user has interacted with, per kind
type UserInteractions struct {
	UserID    string   `json:"user_id"`
	Liked     []string `json:"liked"`
	Commented []string `json:"commented"`
	Shared    []string `json:"shared"`
}

// PostEngagement lists the users who interacted with a post, per kind
type PostEngagement struct {
	PostID      string   `json:"post_id"`
	LikedBy     []string `json:"liked_by"`
	CommentedBy []string `json:"commented_by"`
	SharedBy    []string `json:"shared_by"`
}

// PostRecord is a validated bulk-load row for a post
type PostRecord struct {
	PostID   string
	AuthorID string // optional
	Content  string // optional
}

// FollowRecord is a validated bulk-load row for a FOLLOWS edge
type FollowRecord struct {
	FollowerID string
	FollowedID string
	Timestamp  time.Time
}

// InteractionRecord is a validated bulk-load row for an interaction edge
type InteractionRecord struct {
	UserID    string
	PostID    string
	Kind      InteractionKind
	Timestamp time.Time
}
