package services

import (
	"testing"

	"github.com/modguard/modguard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAllowedTransitions(t *testing.T) {
	statuses := []string{
		models.ReportStatusPending,
		models.ReportStatusReviewing,
		models.ReportStatusResolved,
		models.ReportStatusRejected,
	}

	allowed := map[[2]string]bool{
		{models.ReportStatusPending, models.ReportStatusReviewing}:  true,
		{models.ReportStatusPending, models.ReportStatusResolved}:   true,
		{models.ReportStatusPending, models.ReportStatusRejected}:   true,
		{models.ReportStatusReviewing, models.ReportStatusResolved}: true,
		{models.ReportStatusReviewing, models.ReportStatusRejected}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := allowedTransitions[from][to]
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	assert.Empty(t, allowedTransitions[models.ReportStatusResolved])
	assert.Empty(t, allowedTransitions[models.ReportStatusRejected])
}
