package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"socialpulse/backend/internal/engine"
	"socialpulse/backend/internal/graph"
	"socialpulse/backend/pkg/config"
	apperrors "socialpulse/backend/pkg/errors"
	"go.uber.org/zap"
)

func setupRouter(log *zap.Logger, cfg *config.Config, repo *graph.Repository, eng *engine.Engine) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Admin-Token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Identity resolution (a write: the node is created on first reference)
		api.POST("/identity/resolve", func(c *gin.Context) {
			var req struct {
				ID   string `json:"id" binding:"required"`
				Kind string `json:"kind" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := eng.ResolveIdentity(c.Request.Context(), req.ID, req.Kind); err != nil {
				respondError(c, log, "resolve identity", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": req.ID, "kind": req.Kind})
		})

		// Follow mutation
		api.POST("/follows", func(c *gin.Context) {
			var req struct {
				FollowerID string `json:"follower_id" binding:"required"`
				FollowedID string `json:"followed_id" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := eng.Follow(c.Request.Context(), req.FollowerID, req.FollowedID); err != nil {
				respondError(c, log, "follow", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "followed"})
		})

		// Interaction mutation
		api.POST("/interactions", func(c *gin.Context) {
			var req struct {
				UserID string `json:"user_id" binding:"required"`
				PostID string `json:"post_id" binding:"required"`
				Type   string `json:"interaction_type" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := eng.RecordInteraction(c.Request.Context(), req.UserID, req.PostID, req.Type); err != nil {
				respondError(c, log, "record interaction", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "recorded"})
		})

		// Bulk loaders
		api.POST("/users/bulk", func(c *gin.Context) {
			var req struct {
				Rows []engine.UserRow `json:"rows" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			respondBatch(c, log, "bulk load users")(eng.BulkLoadUsers(c.Request.Context(), req.Rows))
		})
		api.POST("/posts/bulk", func(c *gin.Context) {
			var req struct {
				Rows []engine.PostRow `json:"rows" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			respondBatch(c, log, "bulk load posts")(eng.BulkLoadPosts(c.Request.Context(), req.Rows))
		})
		api.POST("/follows/bulk", func(c *gin.Context) {
			var req struct {
				Rows []engine.FollowRow `json:"rows" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			respondBatch(c, log, "bulk follow")(eng.BulkFollow(c.Request.Context(), req.Rows))
		})
		api.POST("/interactions/bulk", func(c *gin.Context) {
			var req struct {
				Rows []engine.InteractionRow `json:"rows" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			respondBatch(c, log, "bulk interactions")(eng.BulkRecordInteractions(c.Request.Context(), req.Rows))
		})

		// One-hop traversals. Query failures return empty defaults with a
		// logged diagnostic; callers cannot tell store failure from no data
		// here, which is the accepted contract for the presentation layer.
		api.GET("/users/:id/following", func(c *gin.Context) {
			following, err := repo.ListFollowing(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to list following", zap.String("user_id", c.Param("id")), zap.Error(err))
				following = []graph.Followee{}
			}
			c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "following": following})
		})
		api.GET("/users/:id/followers", func(c *gin.Context) {
			followers, err := repo.ListFollowers(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to list followers", zap.String("user_id", c.Param("id")), zap.Error(err))
				followers = []string{}
			}
			c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "followers": followers})
		})
		api.GET("/users/:id/mutuals", func(c *gin.Context) {
			mutuals, err := repo.ListMutuals(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to list mutuals", zap.String("user_id", c.Param("id")), zap.Error(err))
				mutuals = []string{}
			}
			c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "mutuals": mutuals})
		})

		// Analytics
		api.GET("/influencers", func(c *gin.Context) {
			minFollowers, err := strconv.ParseInt(c.DefaultQuery("min_followers", "1"), 10, 64)
			if err != nil || minFollowers < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "min_followers must be a non-negative integer"})
				return
			}
			influencers, err := repo.RankInfluencers(c.Request.Context(), minFollowers)
			if err != nil {
				log.Error("Failed to rank influencers", zap.Error(err))
				influencers = []graph.Influencer{}
			}
			c.JSON(http.StatusOK, gin.H{"influencers": influencers})
		})
		api.GET("/users/:id/triangles", func(c *gin.Context) {
			triangles, err := repo.DetectCommunityTriangles(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to detect triangles", zap.String("user_id", c.Param("id")), zap.Error(err))
				triangles = []graph.Triangle{}
			}
			c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "triangles": triangles})
		})
		api.GET("/path", func(c *gin.Context) {
			src := c.Query("src")
			dst := c.Query("dst")
			if src == "" || dst == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "src and dst are required"})
				return
			}
			path, err := repo.FindShortestPath(c.Request.Context(), src, dst)
			if err != nil {
				log.Error("Failed to find shortest path", zap.String("src", src), zap.String("dst", dst), zap.Error(err))
				path = []string{}
			}
			c.JSON(http.StatusOK, gin.H{"src": src, "dst": dst, "path": path})
		})

		// Engagement metrics
		api.GET("/users/:id/engagement", func(c *gin.Context) {
			start, ok := parseTimeParam(c, "start")
			if !ok {
				return
			}
			end, ok := parseTimeParam(c, "end")
			if !ok {
				return
			}
			metrics, err := repo.EngagementMetrics(c.Request.Context(), c.Param("id"), start, end)
			if err != nil {
				log.Error("Failed to compute engagement metrics", zap.String("user_id", c.Param("id")), zap.Error(err))
				metrics = &graph.Metrics{Posts: []graph.PostMetrics{}}
			}
			c.JSON(http.StatusOK, metrics)
		})
		api.GET("/users/:id/engagement/dropoff", func(c *gin.Context) {
			windowDays, err := strconv.Atoi(c.DefaultQuery("window_days", "7"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must be an integer"})
				return
			}
			dropoff, err := eng.EngagementDropOff(c.Request.Context(), c.Param("id"), windowDays)
			if err != nil {
				respondError(c, log, "engagement dropoff", err)
				return
			}
			c.JSON(http.StatusOK, dropoff)
		})
		api.GET("/users/:id/growth", func(c *gin.Context) {
			growth, err := repo.FollowerGrowth(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to compute follower growth", zap.String("user_id", c.Param("id")), zap.Error(err))
				growth = []graph.FollowerSince{}
			}
			c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "followers": growth})
		})
		api.GET("/users/:id/interactions", func(c *gin.Context) {
			interactions, err := repo.GetUserInteractions(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to get user interactions", zap.String("user_id", c.Param("id")), zap.Error(err))
				interactions = &graph.UserInteractions{UserID: c.Param("id"), Liked: []string{}, Commented: []string{}, Shared: []string{}}
			}
			c.JSON(http.StatusOK, interactions)
		})
		api.GET("/posts/:id/engagement", func(c *gin.Context) {
			engagement, err := repo.GetPostEngagement(c.Request.Context(), c.Param("id"))
			if err != nil {
				log.Error("Failed to get post engagement", zap.String("post_id", c.Param("id")), zap.Error(err))
				engagement = &graph.PostEngagement{PostID: c.Param("id"), LikedBy: []string{}, CommentedBy: []string{}, SharedBy: []string{}}
			}
			c.JSON(http.StatusOK, engagement)
		})

		// Scoring
		api.POST("/users/:id/strength/recompute", func(c *gin.Context) {
			if err := eng.RecomputeStrength(c.Request.Context(), c.Param("id")); err != nil {
				respondError(c, log, "recompute strength", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "recomputed"})
		})

		// Destructive admin operation, disabled without a configured token
		api.DELETE("/admin/data", func(c *gin.Context) {
			if cfg.AdminToken == "" || c.GetHeader("X-Admin-Token") != cfg.AdminToken {
				c.JSON(http.StatusForbidden, gin.H{"error": "admin token required"})
				return
			}
			if err := repo.DropAllData(c.Request.Context()); err != nil {
				respondError(c, log, "drop all data", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "dropped"})
		})
	}

	return router
}

// respondError maps the error taxonomy to HTTP statuses
func respondError(c *gin.Context, log *zap.Logger, operation string, err error) {
	log.Error("Operation failed", zap.String("operation", operation), zap.Error(err))
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput):
		return http.StatusBadRequest
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
		return http.StatusNotFound
	case apperrors.IsErrorType(err, apperrors.ErrorTypeStoreUnavailable):
		return http.StatusServiceUnavailable
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		return http.StatusGatewayTimeout
	case apperrors.IsErrorType(err, apperrors.ErrorTypePartialBatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondBatch reports the aggregate result of a bulk operation. A batch
// with skipped rows still responds with its counts as long as anything
// loaded; an all-skipped batch and a store failure both surface as errors,
// with the counts attached when available.
func respondBatch(c *gin.Context, log *zap.Logger, operation string) func(*engine.BatchResult, error) {
	return func(result *engine.BatchResult, err error) {
		if err != nil {
			log.Error("Operation failed", zap.String("operation", operation), zap.Error(err))
			body := gin.H{"error": err.Error()}
			if result != nil {
				body["result"] = result
			}
			c.JSON(statusForError(err), body)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			ts = ts.UTC()
			return &ts, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an ISO-8601 timestamp"})
	return nil, false
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
