package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/repository"
)

func TestUsers_CreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.Create(ctx, &domain.User{Username: "ana", Status: domain.StatusClockedOut}))
	err := users.Create(ctx, &domain.User{Username: "ana", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := users.GetByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClockedOut, got.Status)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUsers_DeskIsExclusive(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()
	require.NoError(t, users.Create(ctx, &domain.User{Username: "ana"}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "ben"}))

	desk := "D-12"
	require.NoError(t, users.UpdateDesk(ctx, "ana", &desk))
	require.NoError(t, users.UpdateDesk(ctx, "ana", &desk))
	assert.ErrorIs(t, users.UpdateDesk(ctx, "ben", &desk), repository.ErrDuplicate)

	holder, err := users.GetByDesk(ctx, desk)
	require.NoError(t, err)
	assert.Equal(t, "ana", holder.Username)
}

func TestUsers_ListByStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()
	require.NoError(t, users.Create(ctx, &domain.User{Username: "ben", Status: domain.StatusBreak}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "ana", Status: domain.StatusBreak}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "cy", Status: domain.StatusClockedIn}))

	names, err := users.ListByStatus(ctx, domain.StatusBreak)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "ben"}, names)

	require.NoError(t, users.Delete(ctx, "ana"))
	assert.ErrorIs(t, users.Delete(ctx, "ana"), pgx.ErrNoRows)
}

func TestTimesheets_ListBetween(t *testing.T) {
	ctx := context.Background()
	sheets := NewStore().Timesheets()
	mon := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	for _, e := range []domain.TimesheetEntry{
		{Username: "ana", Date: mon, WorkHours: 1},
		{Username: "ana", Date: mon.AddDate(0, 0, 4), WorkHours: 2},
		{Username: "ana", Date: mon.AddDate(0, 0, 5), WorkHours: 3},
		{Username: "ben", Date: mon.AddDate(0, 0, 1), WorkHours: 4},
	} {
		e := e
		require.NoError(t, sheets.Create(ctx, &e))
		assert.NotZero(t, e.ID)
	}

	all, err := sheets.ListBetween(ctx, mon, mon.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ana, err := sheets.ListByUserBetween(ctx, "ana", mon, mon.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Len(t, ana, 2)
}

func TestMessages_InboxOrderAndFlags(t *testing.T) {
	ctx := context.Background()
	msgs := NewStore().Messages()
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	require.NoError(t, msgs.Create(ctx, &domain.Message{ID: "1", Receiver: "ana", Timestamp: base}))
	require.NoError(t, msgs.Create(ctx, &domain.Message{ID: "2", Receiver: "ana", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, msgs.Create(ctx, &domain.Message{ID: "3", Receiver: "ben", Timestamp: base}))

	inbox, err := msgs.ListInbox(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "2", inbox[0].ID)

	require.NoError(t, msgs.SetDeleted(ctx, "2", true))
	inbox, _ = msgs.ListInbox(ctx, "ana")
	assert.Len(t, inbox, 1)

	require.NoError(t, msgs.MarkRead(ctx, "1"))
	got, err := msgs.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	assert.ErrorIs(t, msgs.MarkRead(ctx, "missing"), pgx.ErrNoRows)
}
