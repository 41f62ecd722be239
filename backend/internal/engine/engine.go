package engine

import (
	"context"
	"strings"
	"time"
	"unicode"

	"socialpulse/backend/internal/graph"
	"socialpulse/backend/pkg/config"
	apperrors "socialpulse/backend/pkg/errors"
	"socialpulse/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Relationship strength facet bounds and interaction weights
const (
	baseStrength         = 0.1 // floor, and default on bulk-loaded edges
	directFollowStrength = 0.5 // initial strength on a real-time follow
	maxStrength          = 5.0

	likeWeight    = 0.2
	commentWeight = 0.5
	shareWeight   = 1.0
)

// Store is the graph repository surface the engine depends on
type Store interface {
	ResolveUser(ctx context.Context, userID string) error
	ResolvePost(ctx context.Context, postID string) error
	CreateFollow(ctx context.Context, followerID, followedID string, ts time.Time, strength float64) error
	CreateInteraction(ctx context.Context, userID, postID string, kind graph.InteractionKind, ts time.Time) error
	ListFollowing(ctx context.Context, userID string) ([]graph.Followee, error)
	FolloweeInteractionCounts(ctx context.Context, userID string, followeeIDs []string) (map[string]graph.InteractionCounts, error)
	SetFollowStrengths(ctx context.Context, userID string, strengths map[string]float64) error
	BulkCreateUsers(ctx context.Context, userIDs []string) error
	BulkCreatePosts(ctx context.Context, rows []graph.PostRecord) error
	BulkCreateFollows(ctx context.Context, rows []graph.FollowRecord, strength float64) error
	BulkCreateInteractions(ctx context.Context, rows []graph.InteractionRecord) error
	EngagementMetrics(ctx context.Context, userID string, start, end *time.Time) (*graph.Metrics, error)
}

// Engine coordinates mutations, bulk loads and strength scoring on top of
// the graph store
type Engine struct {
	store     Store
	logger    *zap.Logger
	batchSize int
	scoring   *errgroup.Group
}

// NewEngine creates the engine with a bounded scoring worker pool
func NewEngine(store Store, cfg *config.Config) *Engine {
	g := &errgroup.Group{}
	g.SetLimit(cfg.ScoringWorkers)
	return &Engine{
		store:     store,
		logger:    logger.Get(),
		batchSize: cfg.ScoringBatchSize,
		scoring:   g,
	}
}

// Close waits for in-flight scoring work to finish
func (e *Engine) Close() {
	_ = e.scoring.Wait()
}

// Follow creates a FOLLOWS edge after resolving both identities. A user
// cannot follow itself.
func (e *Engine) Follow(ctx context.Context, followerID, followedID string) error {
	if err := validateIdentifier("follower_id", followerID); err != nil {
		return err
	}
	if err := validateIdentifier("followed_id", followedID); err != nil {
		return err
	}
	if followerID == followedID {
		return apperrors.NewSelfFollow(followerID)
	}

	if err := e.store.ResolveUser(ctx, followerID); err != nil {
		return err
	}
	if err := e.store.ResolveUser(ctx, followedID); err != nil {
		return err
	}

	return e.store.CreateFollow(ctx, followerID, followedID, time.Now().UTC(), directFollowStrength)
}

// RecordInteraction writes a typed interaction edge and triggers a
// strength recompute for the acting user. The post is created on first
// reference: interactions may arrive before the post is bulk-loaded.
// Scoring failure never rolls back the interaction write.
func (e *Engine) RecordInteraction(ctx context.Context, userID, postID, kind string) error {
	if err := validateIdentifier("user_id", userID); err != nil {
		return err
	}
	if err := validateIdentifier("post_id", postID); err != nil {
		return err
	}
	interaction, ok := ParseInteractionKind(kind)
	if !ok {
		return apperrors.NewUnknownInteraction(kind)
	}

	if err := e.store.ResolveUser(ctx, userID); err != nil {
		return err
	}
	if err := e.store.ResolvePost(ctx, postID); err != nil {
		return err
	}

	if err := e.store.CreateInteraction(ctx, userID, postID, interaction, time.Now().UTC()); err != nil {
		return err
	}

	e.dispatchScoring(userID)
	return nil
}

// dispatchScoring hands a recompute to the worker pool, falling back to an
// inline run when the pool is saturated. Either way the result is logged,
// never surfaced to the triggering caller.
func (e *Engine) dispatchScoring(userID string) {
	run := func() error {
		if err := e.RecomputeStrength(context.Background(), userID); err != nil {
			e.logger.Warn("Strength recompute failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		return nil
	}
	if !e.scoring.TryGo(run) {
		_ = run()
	}
}

// ResolveIdentity maps a domain identifier to a store node, creating it
// on first reference. Kind is "user" or "post". Resolution is a write.
func (e *Engine) ResolveIdentity(ctx context.Context, id, kind string) error {
	if err := validateIdentifier("id", id); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "user":
		return e.store.ResolveUser(ctx, id)
	case "post":
		return e.store.ResolvePost(ctx, id)
	}
	return apperrors.NewInvalidInput("kind", "must be user or post")
}

// ParseInteractionKind normalizes an interaction type name, accepting the
// edge-type spellings and their common synonyms case-insensitively
func ParseInteractionKind(kind string) (graph.InteractionKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "LIKE", "LIKED", "LIKED_POST":
		return graph.InteractionLike, true
	case "COMMENT", "COMMENTED", "COMMENTED_POST":
		return graph.InteractionComment, true
	case "SHARE", "SHARED", "SHARED_POST":
		return graph.InteractionShare, true
	}
	return "", false
}

// validateIdentifier rejects empty identifiers and identifiers carrying
// embedded delimiters or whitespace, which would corrupt bulk rows and
// query parameters downstream
func validateIdentifier(field, id string) error {
	if id == "" {
		return apperrors.NewInvalidInput(field, "must not be empty")
	}
	if strings.ContainsRune(id, ',') {
		return apperrors.NewInvalidInput(field, "must not contain a delimiter")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return apperrors.NewInvalidInput(field, "must not contain whitespace")
		}
	}
	return nil
}
