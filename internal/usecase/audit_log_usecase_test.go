package usecase

import (
	"context"
	"testing"

	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAuditLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	audit := NewAuditLogUsecase(f.log, f.auditLogs)

	for i := 0; i < 3; i++ {
		f.register(t, "A")
	}
	f.claim(t, uuid.New())

	all, err := audit.ListAuditLogs(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 4, all.Total)
	assert.Equal(t, entity.AuditActionQueueClaim, all.Logs[0].Action)
	assert.Greater(t, all.Logs[0].ID, all.Logs[1].ID)

	registrations, err := audit.ListAuditLogs(ctx, &dto.AuditLogQuery{Action: entity.AuditActionPatientRegister, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, registrations.Total)
	for _, l := range registrations.Logs {
		assert.Equal(t, entity.AuditActionPatientRegister, l.Action)
	}
}

func TestGetAuditLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	audit := NewAuditLogUsecase(f.log, f.auditLogs)

	f.register(t, "A")

	entry, err := audit.GetAuditLog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionPatientRegister, entry.Action)
	assert.Equal(t, "patient", entry.Metadata["entity"])

	_, err = audit.GetAuditLog(ctx, 42)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
