package usecase

import (
	"fmt"
	"testing"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogPaging(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.createSubjectViaUsecase(t, fmt.Sprintf("Subject %d", i))
	}
	uc := NewAuditLogUsecase(env.db, env.log, env.auditLogRepo)

	page, err := uc.GetAllAuditLogs(asAdmin(1), dto.AuditLogQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Logs, 2)
	assert.Equal(t, entity.AuditActionSubjectCreate, page.Logs[0].Action)
	assert.Greater(t, page.Logs[0].ID, page.Logs[1].ID)

	last, err := uc.GetAllAuditLogs(asAdmin(1), dto.AuditLogQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last.Logs, 1)

	one, err := uc.GetAuditLog(asAdmin(1), last.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "subject", one.Metadata["entity"])

	_, err = uc.GetAuditLog(asAdmin(1), 9999)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}

func (e *testEnv) createSubjectViaUsecase(t *testing.T, title string) {
	t.Helper()
	_, err := e.subjects().CreateSubject(asAdmin(1), &dto.CreateSubjectRequest{Title: title})
	require.NoError(t, err)
}
