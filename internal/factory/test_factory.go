package factory

import (
	"time"

	"github.com/dwalters/cardroom/internal/dependencies/mocks"
	"github.com/dwalters/cardroom/internal/session"
	"github.com/dwalters/cardroom/internal/storage/memory"
	"github.com/dwalters/cardroom/internal/testutil"
	"github.com/dwalters/cardroom/internal/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// MockClock controls time for the whole app
	MockClock *mocks.Clock
}

// NewTestApp creates an App configured for testing with a controllable clock
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, session.DefaultConfig(), ws.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
