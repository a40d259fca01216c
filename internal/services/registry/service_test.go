package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dwalters/cardroom/internal/dependencies/mocks"
	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/storage/memory"
	"github.com/dwalters/cardroom/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	clk := mocks.NewClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(memory.New(), clk, testutil.NopLogger())
}

var seedNames = []model.RoomName{"cerf", "babbage", "lovelace", "dijkstra"}

func TestEnsureSeededCreatesRooms(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureSeeded(ctx, seedNames, "golf"))

	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 4)

	for _, room := range rooms {
		require.Equal(t, "golf", room.GameType)
		require.NotEmpty(t, room.Game)
	}
}

func TestEnsureSeededIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureSeeded(ctx, seedNames, "golf"))

	before, err := svc.Find(ctx, "cerf")
	require.NoError(t, err)

	require.NoError(t, svc.EnsureSeeded(ctx, seedNames, "golf"))

	after, err := svc.Find(ctx, "cerf")
	require.NoError(t, err)
	require.Equal(t, before.Game, after.Game)

	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 4)
}

func TestEnsureSeededConcurrent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, svc.EnsureSeeded(ctx, seedNames, "golf"))
		}()
	}
	wg.Wait()

	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 4)
}

func TestFindUnknownRoom(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Find(context.Background(), "turing")
	require.ErrorIs(t, err, model.ErrRoomNotFound)
}
