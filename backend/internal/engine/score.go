package engine

import (
	"context"

	"go.uber.org/zap"
)

// InteractionScore computes the relationship-strength facet from
// interaction counts. The result is never below the base strength and is
// capped at the maximum.
func InteractionScore(likes, comments, shares int64) float64 {
	score := baseStrength +
		float64(likes)*likeWeight +
		float64(comments)*commentWeight +
		float64(shares)*shareWeight
	if score > maxStrength {
		return maxStrength
	}
	return score
}

// RecomputeStrength refreshes the relationship_strength facet on every
// outgoing FOLLOWS edge of userID from the user's interactions with each
// followee's authored posts. Interaction counts are fetched in batches of
// the configured size to keep users with very large follow-out-degrees to
// a bounded number of round trips. All facet writes land in a single
// transaction; a user following nobody is a no-op.
func (e *Engine) RecomputeStrength(ctx context.Context, userID string) error {
	if err := validateIdentifier("user_id", userID); err != nil {
		return err
	}

	following, err := e.store.ListFollowing(ctx, userID)
	if err != nil {
		return err
	}
	if len(following) == 0 {
		return nil
	}

	followeeIDs := make([]string, 0, len(following))
	for _, f := range following {
		followeeIDs = append(followeeIDs, f.UserID)
	}

	strengths := make(map[string]float64, len(followeeIDs))
	for start := 0; start < len(followeeIDs); start += e.batchSize {
		end := start + e.batchSize
		if end > len(followeeIDs) {
			end = len(followeeIDs)
		}
		batch := followeeIDs[start:end]

		counts, err := e.store.FolloweeInteractionCounts(ctx, userID, batch)
		if err != nil {
			return err
		}
		for _, followeeID := range batch {
			c := counts[followeeID] // zero counts score the base strength
			strengths[followeeID] = InteractionScore(c.Likes, c.Comments, c.Shares)
		}
	}

	if err := e.store.SetFollowStrengths(ctx, userID, strengths); err != nil {
		return err
	}

	e.logger.Debug("Relationship strengths recomputed",
		zap.String("user_id", userID),
		zap.Int("followees", len(strengths)),
	)
	return nil
}
