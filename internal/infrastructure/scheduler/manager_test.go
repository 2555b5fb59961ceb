package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpay/internal/application/billing/usecases"
	"planpay/internal/shared/logger"
)

type stubSweepRunner struct{}

func (stubSweepRunner) Execute(ctx context.Context, cmd usecases.RunDueSweepCommand) (*usecases.SweepSummary, error) {
	return &usecases.SweepSummary{}, nil
}

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseSweepTime(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"06:00", 6, 0, false},
		{"23:59", 23, 59, false},
		{"0:5", 0, 5, false},
		{"24:00", 0, 0, true},
		{"06:60", 0, 0, true},
		{"6", 0, 0, true},
		{"six:thirty", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		hour, minute, err := parseSweepTime(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.hour, hour, "input %q", tt.input)
		assert.Equal(t, tt.minute, minute, "input %q", tt.input)
	}
}

func TestSchedulerManager_RegisterAndLifecycle(t *testing.T) {
	manager, err := NewSchedulerManager(testLogger())
	require.NoError(t, err)

	require.NoError(t, manager.RegisterBillingSweepJob(stubSweepRunner{}, "06:00"))
	assert.Len(t, manager.Jobs(), 1)

	assert.False(t, manager.IsStarted())
	manager.Start()
	assert.True(t, manager.IsStarted())

	// Start is idempotent.
	manager.Start()
	assert.True(t, manager.IsStarted())

	require.NoError(t, manager.Stop())
	assert.False(t, manager.IsStarted())

	// Stop on a stopped manager is a no-op.
	require.NoError(t, manager.Stop())
}

func TestSchedulerManager_RejectsBadSweepTime(t *testing.T) {
	manager, err := NewSchedulerManager(testLogger())
	require.NoError(t, err)

	assert.Error(t, manager.RegisterBillingSweepJob(stubSweepRunner{}, "25:00"))
	assert.Empty(t, manager.Jobs())
}
