package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentStatus_EmptyQueue(t *testing.T) {
	f := newFixture(t)

	status, err := f.statusUsecase(5).CurrentStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.Current)
	assert.Empty(t, status.Upcoming)
	assert.NotNil(t, status.Upcoming)
	assert.Equal(t, 3, status.PollIntervalSeconds)
}

func TestCurrentStatus_UpcomingIsBoundedAndOrdered(t *testing.T) {
	f := newFixture(t)
	tokens := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		tokens = append(tokens, f.register(t, "P").Token)
	}

	status, err := f.statusUsecase(5).CurrentStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, status.Upcoming, 5)
	for i, entry := range status.Upcoming {
		assert.Equal(t, tokens[i], entry.Token)
		assert.Equal(t, "ENT", entry.Department)
	}
}

func TestCurrentStatus_LimitIsClamped(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 8; i++ {
		f.register(t, "P")
	}

	for _, limit := range []int{0, -3, 12} {
		status, err := f.statusUsecase(limit).CurrentStatus(context.Background())
		require.NoError(t, err)
		assert.Len(t, status.Upcoming, 5, "limit %d", limit)
	}

	status, err := f.statusUsecase(2).CurrentStatus(context.Background())
	require.NoError(t, err)
	assert.Len(t, status.Upcoming, 2)
}

func TestCurrentStatus_ShowsLatestCall(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A")
	second := f.register(t, "B")
	third := f.register(t, "C")

	doctor := uuid.New()
	f.claim(t, doctor)
	f.claim(t, uuid.New())

	status, err := f.statusUsecase(5).CurrentStatus(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.Current)
	assert.Equal(t, second.Token, status.Current.Token)
	assert.NotNil(t, status.Current.DoctorID)
	require.Len(t, status.Upcoming, 1)
	assert.Equal(t, third.Token, status.Upcoming[0].Token)
}
