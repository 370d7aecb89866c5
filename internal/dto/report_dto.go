package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/models"
)

type SubmitReportRequest struct {
	TargetType     string `json:"target_type"`
	TargetID       string `json:"target_id"`
	Category       string `json:"category"`
	Description    string `json:"description,omitempty"`
	TargetAuthorID string `json:"target_author_id,omitempty"`
}

// SubmitReportResponse is returned to the reporter. Score and
// probability are internal and intentionally not exposed.
type SubmitReportResponse struct {
	Success       bool      `json:"success"`
	ReportID      uuid.UUID `json:"report_id"`
	Message       string    `json:"message"`
	EstimatedTime string    `json:"estimated_time"`
	Priority      string    `json:"priority"`
}

type ListReportsResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type TransitionReportRequest struct {
	Status         string `json:"status"`
	ResolutionNote string `json:"resolution_note,omitempty"`
	Sanction       string `json:"sanction,omitempty"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type ReportStatsResponse struct {
	ByStatus    map[string]int64 `json:"by_status"`
	ByPriority  map[string]int64 `json:"by_priority"`
	ByCategory  map[string]int64 `json:"by_category"`
	Trend       []TrendPoint     `json:"trend"`
	GeneratedAt time.Time        `json:"generated_at"`
}

type SetTriageSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}
