// Package domain contains persistence models for captured telemetry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Event stores one operational log line. Errors share the table with a
// "error:<user>" kind prefix.
type Event struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	TenantID  string       `gorm:"type:text;not null;index"`
	Kind      string       `gorm:"type:text;not null"`
	Content   string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Event) TableName() string { return "events" }

// UsageRecord stores one metered model call with its cost breakdown.
type UsageRecord struct {
	ID               snowflake.ID      `gorm:"primaryKey"`
	TenantID         string            `gorm:"type:text;not null;index"`
	Model            string            `gorm:"type:text;not null"`
	PromptTokens     int64             `gorm:"not null"`
	CompletionTokens int64             `gorm:"not null"`
	CachedTokens     int64             `gorm:"not null"`
	CostUSD          float64           `gorm:"not null"`
	Breakdown        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (UsageRecord) TableName() string { return "usage_records" }

// Metric stores one named gauge sample.
type Metric struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	TenantID  string       `gorm:"type:text;not null;index"`
	Name      string       `gorm:"type:text;not null"`
	Value     float64      `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Metric) TableName() string { return "metrics" }

// Lead stores one captured contact.
type Lead struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	TenantID  string         `gorm:"type:text;not null;index"`
	Name      string         `gorm:"type:text;not null"`
	Email     string         `gorm:"type:text;not null"`
	Phone     string         `gorm:"type:text;not null"`
	Snippet   string         `gorm:"type:text;not null"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Lead) TableName() string { return "leads" }

// Conversation is the per-session shell that messages hang off. The
// (tenant_id, session_id) pair is unique so repeated upserts are no-ops.
type Conversation struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	TenantID  string       `gorm:"type:text;not null;uniqueIndex:idx_conversations_tenant_session"`
	SessionID string       `gorm:"type:text;not null;uniqueIndex:idx_conversations_tenant_session"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Conversation) TableName() string { return "conversations" }

// Message is one turn inside a conversation.
type Message struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	ConversationID snowflake.ID `gorm:"not null;index"`
	Role           string       `gorm:"type:text;not null"`
	Content        string       `gorm:"type:text;not null"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Message) TableName() string { return "messages" }
