// Package repository is the gorm-backed local sink and read side.
package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	dberr "github.com/chatlens/chatlens/pkg/db"
	"github.com/chatlens/chatlens/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultPageSize = 50

type repo struct {
	db   *gorm.DB
	node *snowflake.Node
}

// Provide builds the telemetry repository.
func Provide(db *gorm.DB, node *snowflake.Node) domain.Repository {
	return &repo{db: db, node: node}
}

func (r *repo) CreateEvent(ctx context.Context, event *domain.Event) error {
	if event.ID == 0 {
		event.ID = r.node.Generate()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repo) CreateUsage(ctx context.Context, record *domain.UsageRecord) error {
	if record.ID == 0 {
		record.ID = r.node.Generate()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repo) CreateMetric(ctx context.Context, metric *domain.Metric) error {
	if metric.ID == 0 {
		metric.ID = r.node.Generate()
	}
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(metric).Error
}

func (r *repo) CreateLead(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == 0 {
		lead.ID = r.node.Generate()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(lead).Error
}

// UpsertConversation inserts the (tenant, session) shell if absent and
// returns the surviving row either way. The conflict clause makes repeated
// calls for one session idempotent; a duplicate-key error from a dialect
// without conflict support is treated the same as a skipped insert.
func (r *repo) UpsertConversation(ctx context.Context, tenantID, sessionID string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "session_id"}},
		DoNothing: true,
	}).Create(&domain.Conversation{
		ID:        r.node.Generate(),
		TenantID:  tenantID,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
	if err != nil && !dberr.IsDuplicateKeyErr(err) {
		return nil, err
	}

	var convo domain.Conversation
	err = r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, session_id, created_at, updated_at
		 FROM conversations WHERE tenant_id = ? AND session_id = ?`,
		tenantID,
		sessionID,
	).Scan(&convo).Error
	if err != nil {
		return nil, err
	}
	return &convo, nil
}

func (r *repo) CreateMessage(ctx context.Context, message *domain.Message) error {
	if message.ID == 0 {
		message.ID = r.node.Generate()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repo) ListUsage(ctx context.Context, req domain.ListUsageRequest) (domain.ListUsageResponse, error) {
	var resp domain.ListUsageResponse

	stmt := r.db.WithContext(ctx).
		Model(&domain.UsageRecord{}).
		Where("tenant_id = ?", req.TenantID)
	if req.Model != "" {
		stmt = stmt.Where("model = ?", req.Model)
	}

	stmt, size, err := applyCursor(stmt, req.PageToken, req.PageSize)
	if err != nil {
		return resp, err
	}

	var records []domain.UsageRecord
	if err := stmt.Order("created_at desc, id desc").Find(&records).Error; err != nil {
		return resp, err
	}

	records, resp.PageInfo, err = page(records, size, func(rec domain.UsageRecord) pagination.Cursor {
		return cursorFor(rec.ID, rec.CreatedAt)
	})
	if err != nil {
		return resp, err
	}
	resp.UsageRecords = records
	return resp, nil
}

func (r *repo) ListLeads(ctx context.Context, req domain.ListLeadsRequest) (domain.ListLeadsResponse, error) {
	var resp domain.ListLeadsResponse

	stmt := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("tenant_id = ?", req.TenantID)

	stmt, size, err := applyCursor(stmt, req.PageToken, req.PageSize)
	if err != nil {
		return resp, err
	}

	var leads []domain.Lead
	if err := stmt.Order("created_at desc, id desc").Find(&leads).Error; err != nil {
		return resp, err
	}

	leads, resp.PageInfo, err = page(leads, size, func(lead domain.Lead) pagination.Cursor {
		return cursorFor(lead.ID, lead.CreatedAt)
	})
	if err != nil {
		return resp, err
	}
	resp.Leads = leads
	return resp, nil
}

func (r *repo) ListMessages(ctx context.Context, req domain.ListMessagesRequest) (domain.ListMessagesResponse, error) {
	var resp domain.ListMessagesResponse

	var convo domain.Conversation
	err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM conversations WHERE tenant_id = ? AND session_id = ?`,
		req.TenantID,
		req.SessionID,
	).Scan(&convo).Error
	if err != nil {
		return resp, err
	}
	if convo.ID == 0 {
		resp.Messages = []domain.Message{}
		return resp, nil
	}

	stmt := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", convo.ID)

	stmt, size, err := applyCursor(stmt, req.PageToken, req.PageSize)
	if err != nil {
		return resp, err
	}

	var messages []domain.Message
	if err := stmt.Order("created_at desc, id desc").Find(&messages).Error; err != nil {
		return resp, err
	}

	messages, resp.PageInfo, err = page(messages, size, func(msg domain.Message) pagination.Cursor {
		return cursorFor(msg.ID, msg.CreatedAt)
	})
	if err != nil {
		return resp, err
	}
	resp.Messages = messages
	return resp, nil
}

// applyCursor narrows the statement past the cursor position and caps the
// result at size+1 so the caller can detect another page.
func applyCursor(stmt *gorm.DB, token string, size int32) (*gorm.DB, int, error) {
	pageSize := int(size)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	if token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, 0, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		id, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, 0, err
		}
		stmt = stmt.Where("(created_at, id) < (?, ?)", createdAt, id)
	}

	return stmt.Limit(pageSize + 1), pageSize, nil
}

func cursorFor(id snowflake.ID, createdAt time.Time) pagination.Cursor {
	return pagination.Cursor{
		ID:        strconv.FormatInt(id.Int64(), 10),
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
	}
}

// page trims the probe row off an over-fetched result and encodes the cursor
// of the last surviving row.
func page[T any](rows []T, size int, cursor func(T) pagination.Cursor) ([]T, pagination.PageInfo, error) {
	var info pagination.PageInfo
	if len(rows) > size {
		rows = rows[:size]
		info.HasMore = true
		token, err := pagination.EncodeCursor(cursor(rows[len(rows)-1]))
		if err != nil {
			return nil, info, err
		}
		info.NextPageToken = token
	}
	return rows, info, nil
}
