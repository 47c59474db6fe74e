package dto

import (
	"time"

	"clinic-booking/internal/domain/entity"
)

type AuditLogQuery struct {
	Page  int `validate:"gte=1"`
	Limit int `validate:"gte=1,lte=100"`
}

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	ActorID   *int64      `json:"actor_id,omitempty"`
	ActorRole string      `json:"actor_role,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
