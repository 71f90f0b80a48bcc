package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tripndrop/internal/domain"
	"tripndrop/internal/repository/memory"
)

func journeyIDs(recs []domain.JourneyRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestJourneyLog_ListByTraveler(t *testing.T) {
	t.Parallel()

	l := memory.NewJourneyLog()
	ctx := context.Background()
	for i, rec := range []domain.JourneyRecord{
		{ID: "j1", TravelerID: "t1"},
		{ID: "j2", TravelerID: "t2"},
		{ID: "j3", TravelerID: "t1"},
		{ID: "j4", TravelerID: "t1"},
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, l.Append(ctx, rec))
	}

	got, err := l.ListByTraveler(ctx, "t1", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"j4", "j3", "j1"}, journeyIDs(got))

	got, err = l.ListByTraveler(ctx, "t1", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"j4", "j3"}, journeyIDs(got))

	got, err = l.ListByTraveler(ctx, "nobody", 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestJourneyLog_AppendCanceled(t *testing.T) {
	t.Parallel()

	l := memory.NewJourneyLog()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, l.Append(ctx, domain.JourneyRecord{ID: "j1", TravelerID: "t1"}), context.Canceled)

	got, err := l.ListByTraveler(context.Background(), "t1", 0)
	require.NoError(t, err)
	require.Empty(t, got)
}
