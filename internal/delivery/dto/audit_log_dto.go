package dto

import (
	"time"

	"noq-clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

// AuditLogQuery is read from the query string of the admin list endpoint
type AuditLogQuery struct {
	Action string `json:"action" validate:"omitempty,max=100"`
	Limit  int    `json:"limit" validate:"gte=0"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	UserID    *uuid.UUID  `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
