package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"socialpulse/backend/internal/graph"
	apperrors "socialpulse/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBulkFollow_SkipsMalformedRows(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	rows := make([]FollowRow, 0, 12)
	for i := 0; i < 10; i++ {
		rows = append(rows, FollowRow{
			FollowerID: fmt.Sprintf("user%d", i),
			FollowedID: fmt.Sprintf("user%d", i+1),
		})
	}
	// Embedded delimiter in an id, and a missing field
	rows = append(rows, FollowRow{FollowerID: "bad,id", FollowedID: "user1"})
	rows = append(rows, FollowRow{FollowerID: "user1", FollowedID: ""})

	result, err := e.BulkFollow(context.Background(), rows)
	assert.NoError(t, err)
	assert.Equal(t, 10, result.Loaded)
	assert.Equal(t, 2, result.Skipped)
	assert.NotEmpty(t, result.BatchID)

	// The surviving rows commit once, at the bulk default strength
	assert.Len(t, store.bulkFollows, 1)
	assert.Len(t, store.bulkFollows[0], 10)
	assert.Equal(t, 0.1, store.bulkFollowStr[0])
}

func TestBulkFollow_SkipsSelfFollow(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkFollow(context.Background(), []FollowRow{
		{FollowerID: "alice", FollowedID: "alice"},
		{FollowerID: "alice", FollowedID: "bob"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
}

func TestBulkFollow_AllRowsSkipped(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkFollow(context.Background(), []FollowRow{
		{FollowerID: "", FollowedID: "bob"},
		{FollowerID: "a,b", FollowedID: "bob"},
	})
	assert.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypePartialBatch))
	assert.Equal(t, 0, result.Loaded)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, store.bulkFollows, 0)
}

func TestBulkFollow_HonorsRowTimestamp(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkFollow(context.Background(), []FollowRow{
		{FollowerID: "alice", FollowedID: "bob", Timestamp: "2024-03-01T10:00:00Z"},
		{FollowerID: "alice", FollowedID: "carol", Timestamp: "not-a-time"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 1, result.Skipped)

	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, want, store.bulkFollows[0][0].Timestamp)
}

func TestBulkRecordInteractions_NormalizesSynonyms(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkRecordInteractions(context.Background(), []InteractionRow{
		{UserID: "alice", PostID: "p1", Type: "LIKE"},
		{UserID: "alice", PostID: "p2", Type: "Commented"},
		{UserID: "bob", PostID: "p1", Type: "shared_post"},
		{UserID: "bob", PostID: "p2", Type: "poked"},
		{UserID: "bob", PostID: "", Type: "like"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Loaded)
	assert.Equal(t, 2, result.Skipped)

	records := store.bulkInteracts[0]
	assert.Equal(t, graph.InteractionLike, records[0].Kind)
	assert.Equal(t, graph.InteractionComment, records[1].Kind)
	assert.Equal(t, graph.InteractionShare, records[2].Kind)
}

func TestBulkLoadUsers(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkLoadUsers(context.Background(), []UserRow{
		{UserID: "alice"},
		{UserID: ""},
		{UserID: "bob"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"alice", "bob"}, store.bulkUsers[0])
}

func TestBulkLoadPosts_AuthorOptional(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkLoadPosts(context.Background(), []PostRow{
		{PostID: "p1", AuthorID: "alice", Content: "hello"},
		{PostID: "p2"},
		{PostID: "p3", AuthorID: "bad author"},
		{PostID: ""},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, 2, result.Skipped)

	records := store.bulkPosts[0]
	assert.Equal(t, "alice", records[0].AuthorID)
	assert.Equal(t, "", records[1].AuthorID)
}

func TestBulkLoad_EmptyBatch(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(store)

	result, err := e.BulkFollow(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Loaded)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, store.bulkFollows, 0)
}

func TestParseRowTimestamp(t *testing.T) {
	cases := []struct {
		input string
		ok    bool
	}{
		{"", true},
		{"2024-03-01T10:00:00Z", true},
		{"2024-03-01T10:00:00", true},
		{"2024-03-01", true},
		{"yesterday", false},
		{"01/03/2024", false},
	}
	for _, tc := range cases {
		_, ok := parseRowTimestamp(tc.input)
		assert.Equal(t, tc.ok, ok, "parseRowTimestamp(%q)", tc.input)
	}
}
