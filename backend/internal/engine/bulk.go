package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"socialpulse/backend/internal/graph"
	apperrors "socialpulse/backend/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Bulk Loaders
// ============================================================================
//
// Bulk operations never abort on a single bad row: malformed rows are
// skipped and counted, the surviving rows commit once. A batch where every
// row was skipped surfaces a partial-batch error.

// UserRow is one unvalidated bulk-load row for a user
type UserRow struct {
	UserID string `json:"user_id"`
}

// PostRow is one unvalidated bulk-load row for a post
type PostRow struct {
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id,omitempty"`
	Content  string `json:"content,omitempty"`
}

// FollowRow is one unvalidated bulk-load row for a FOLLOWS edge
type FollowRow struct {
	FollowerID string `json:"follower_id"`
	FollowedID string `json:"followed_id"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// InteractionRow is one unvalidated bulk-load row for an interaction edge
type InteractionRow struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	Type      string `json:"interaction_type"`
	Timestamp string `json:"timestamp,omitempty"`
}

// BatchResult reports the outcome of one bulk operation
type BatchResult struct {
	BatchID string `json:"batch_id"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}

// BulkLoadUsers upserts user nodes, skipping malformed identifiers
func (e *Engine) BulkLoadUsers(ctx context.Context, rows []UserRow) (*BatchResult, error) {
	result := newBatchResult()

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if err := validateIdentifier("user_id", row.UserID); err != nil {
			result.Skipped++
			continue
		}
		ids = append(ids, row.UserID)
	}

	if len(ids) > 0 {
		if err := e.store.BulkCreateUsers(ctx, ids); err != nil {
			return nil, err
		}
	}
	result.Loaded = len(ids)
	return e.finishBatch(ctx, "users", result, len(rows))
}

// BulkLoadPosts upserts post nodes with optional authorship
func (e *Engine) BulkLoadPosts(ctx context.Context, rows []PostRow) (*BatchResult, error) {
	result := newBatchResult()

	records := make([]graph.PostRecord, 0, len(rows))
	for _, row := range rows {
		if err := validateIdentifier("post_id", row.PostID); err != nil {
			result.Skipped++
			continue
		}
		if row.AuthorID != "" {
			if err := validateIdentifier("author_id", row.AuthorID); err != nil {
				result.Skipped++
				continue
			}
		}
		records = append(records, graph.PostRecord{
			PostID:   row.PostID,
			AuthorID: row.AuthorID,
			Content:  row.Content,
		})
	}

	if len(records) > 0 {
		if err := e.store.BulkCreatePosts(ctx, records); err != nil {
			return nil, err
		}
	}
	result.Loaded = len(records)
	return e.finishBatch(ctx, "posts", result, len(rows))
}

// BulkFollow upserts FOLLOWS edges with per-row validation. Self-follows
// and malformed identifiers are skipped; an absent timestamp defaults to
// now. Bulk edges start at the minimum strength until a recompute.
func (e *Engine) BulkFollow(ctx context.Context, rows []FollowRow) (*BatchResult, error) {
	result := newBatchResult()

	records := make([]graph.FollowRecord, 0, len(rows))
	for _, row := range rows {
		if validateIdentifier("follower_id", row.FollowerID) != nil ||
			validateIdentifier("followed_id", row.FollowedID) != nil ||
			row.FollowerID == row.FollowedID {
			result.Skipped++
			continue
		}
		ts, ok := parseRowTimestamp(row.Timestamp)
		if !ok {
			result.Skipped++
			continue
		}
		records = append(records, graph.FollowRecord{
			FollowerID: row.FollowerID,
			FollowedID: row.FollowedID,
			Timestamp:  ts,
		})
	}

	if len(records) > 0 {
		if err := e.store.BulkCreateFollows(ctx, records, baseStrength); err != nil {
			return nil, err
		}
	}
	result.Loaded = len(records)
	return e.finishBatch(ctx, "follows", result, len(rows))
}

// BulkRecordInteractions upserts interaction edges, normalizing type
// synonyms case-insensitively and skipping rows with an unknown type or
// missing identifier
func (e *Engine) BulkRecordInteractions(ctx context.Context, rows []InteractionRow) (*BatchResult, error) {
	result := newBatchResult()

	records := make([]graph.InteractionRecord, 0, len(rows))
	for _, row := range rows {
		if validateIdentifier("user_id", row.UserID) != nil ||
			validateIdentifier("post_id", row.PostID) != nil {
			result.Skipped++
			continue
		}
		kind, ok := ParseInteractionKind(row.Type)
		if !ok {
			result.Skipped++
			continue
		}
		ts, ok := parseRowTimestamp(row.Timestamp)
		if !ok {
			result.Skipped++
			continue
		}
		records = append(records, graph.InteractionRecord{
			UserID:    row.UserID,
			PostID:    row.PostID,
			Kind:      kind,
			Timestamp: ts,
		})
	}

	if len(records) > 0 {
		if err := e.store.BulkCreateInteractions(ctx, records); err != nil {
			return nil, err
		}
	}
	result.Loaded = len(records)
	return e.finishBatch(ctx, "interactions", result, len(rows))
}

func newBatchResult() *BatchResult {
	return &BatchResult{BatchID: uuid.NewString()}
}

func (e *Engine) finishBatch(ctx context.Context, kind string, result *BatchResult, total int) (*BatchResult, error) {
	if result.Skipped > 0 {
		e.logger.Warn("Bulk load skipped rows",
			zap.String("kind", kind),
			zap.String("batch_id", result.BatchID),
			zap.Int("loaded", result.Loaded),
			zap.Int("skipped", result.Skipped),
		)
	}
	if result.Loaded == 0 && result.Skipped > 0 {
		return result, apperrors.NewPartialBatch(result.BatchID, result.Skipped)
	}
	e.logger.Info("Bulk load committed",
		zap.String("kind", kind),
		zap.String("batch_id", result.BatchID),
		zap.Int("rows", total),
		zap.Int("loaded", result.Loaded),
	)
	return result, nil
}

// parseRowTimestamp accepts ISO-8601 timestamps with progressively coarser
// precision. An empty value defaults to now; an unparseable value marks
// the row malformed.
func parseRowTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Now().UTC(), true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
