package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) domain.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Event{},
		&domain.UsageRecord{},
		&domain.Metric{},
		&domain.Lead{},
		&domain.Conversation{},
		&domain.Message{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return Provide(db, node)
}

func TestUpsertConversation_Idempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertConversation(ctx, "acme", "sess-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.NotZero(t, first.ID)

	second, err := repo.UpsertConversation(ctx, "acme", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeated upserts return the original row")

	other, err := repo.UpsertConversation(ctx, "globex", "sess-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "same session under another tenant is a new row")
}

func TestCreateAndListMessages(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	convo, err := repo.UpsertConversation(ctx, "acme", "sess-1")
	require.NoError(t, err)

	turns := []struct {
		role    string
		content string
	}{
		{"user", "hi"},
		{"assistant", "hello!"},
		{"user", "what do you sell?"},
	}
	base := time.Now().UTC().Add(-time.Minute)
	for i, turn := range turns {
		require.NoError(t, repo.CreateMessage(ctx, &domain.Message{
			ConversationID: convo.ID,
			Role:           turn.role,
			Content:        turn.content,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	resp, err := repo.ListMessages(ctx, domain.ListMessagesRequest{
		TenantID:  "acme",
		SessionID: "sess-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "what do you sell?", resp.Messages[0].Content, "newest first")
	assert.False(t, resp.HasMore)
}

func TestListMessages_UnknownSessionIsEmpty(t *testing.T) {
	repo := setupRepo(t)

	resp, err := repo.ListMessages(context.Background(), domain.ListMessagesRequest{
		TenantID:  "acme",
		SessionID: "nope",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Messages)
	assert.False(t, resp.HasMore)
}

func TestListUsage_FiltersAndPaginates(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateUsage(ctx, &domain.UsageRecord{
			TenantID:     "acme",
			Model:        "gpt-4o-mini",
			PromptTokens: int64(100 * i),
			CostUSD:      0.001,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.CreateUsage(ctx, &domain.UsageRecord{
		TenantID: "globex",
		Model:    "gpt-4o-mini",
		CostUSD:  0.002,
	}))

	page1, err := repo.ListUsage(ctx, domain.ListUsageRequest{
		TenantID: "acme",
		PageSize: 3,
	})
	require.NoError(t, err)
	require.Len(t, page1.UsageRecords, 3)
	require.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextPageToken)

	page2, err := repo.ListUsage(ctx, domain.ListUsageRequest{
		TenantID:  "acme",
		PageSize:  3,
		PageToken: page1.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, page2.UsageRecords, 2)
	assert.False(t, page2.HasMore)

	seen := map[int64]bool{}
	for _, rec := range append(page1.UsageRecords, page2.UsageRecords...) {
		assert.Equal(t, "acme", rec.TenantID)
		assert.False(t, seen[rec.ID.Int64()], "no row appears twice")
		seen[rec.ID.Int64()] = true
	}
}

func TestListUsage_ModelFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUsage(ctx, &domain.UsageRecord{TenantID: "acme", Model: "gpt-4o-mini"}))
	require.NoError(t, repo.CreateUsage(ctx, &domain.UsageRecord{TenantID: "acme", Model: "gpt-4o"}))

	resp, err := repo.ListUsage(ctx, domain.ListUsageRequest{TenantID: "acme", Model: "gpt-4o"})
	require.NoError(t, err)
	require.Len(t, resp.UsageRecords, 1)
	assert.Equal(t, "gpt-4o", resp.UsageRecords[0].Model)
}

func TestListLeads(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLead(ctx, &domain.Lead{
		TenantID: "acme",
		Name:     "Ada",
		Email:    "ada@example.com",
	}))

	resp, err := repo.ListLeads(ctx, domain.ListLeadsRequest{TenantID: "acme"})
	require.NoError(t, err)
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, "Ada", resp.Leads[0].Name)
}

func TestCreateEvent_AssignsIDAndTimestamp(t *testing.T) {
	repo := setupRepo(t)

	event := &domain.Event{TenantID: "acme", Kind: "info", Content: "up"}
	require.NoError(t, repo.CreateEvent(context.Background(), event))

	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}
