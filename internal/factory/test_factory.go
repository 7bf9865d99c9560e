package factory

import (
	"time"

	"github.com/mcoot/quickquack/internal/dependencies/mocks"
	"github.com/mcoot/quickquack/internal/services/auth"
	"github.com/mcoot/quickquack/internal/services/board"
	"github.com/mcoot/quickquack/internal/storage"
	"github.com/mcoot/quickquack/internal/storage/memory"
	"github.com/mcoot/quickquack/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App on memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates an App on the given storage with mocked dependencies
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, board.Default(), mockClock, mockRandom, auth.DefaultConfig(), testutil.NopLogger())
	if err != nil {
		// The built-in avatar catalog is always valid
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
