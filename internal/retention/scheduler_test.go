package retention

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"csvexport/internal/config"
	"csvexport/internal/logging"
	"csvexport/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "valid daily schedule", schedule: "0 3 * * *", wantRunning: true},
		{name: "valid hourly schedule", schedule: "0 * * * *", wantRunning: true},
		{name: "empty schedule - no error, not running", schedule: ""},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.RetentionConfig{Schedule: tt.schedule, MaxAge: time.Hour}
			s := NewScheduler(new(mocks.MockExportService), cfg, logging.New(&bytes.Buffer{}, time.UTC))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRunning, s.IsRunning())

			if tt.wantRunning {
				assert.NotNil(t, s.NextRun())
			} else {
				assert.Nil(t, s.NextRun())
			}

			s.Stop()
			assert.False(t, s.IsRunning())
		})
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewScheduler(new(mocks.MockExportService), config.RetentionConfig{Schedule: "0 3 * * *"}, logging.New(&bytes.Buffer{}, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.RetentionConfig{MaxAge: 48 * time.Hour}

	t.Run("purges before the cutoff", func(t *testing.T) {
		var buf bytes.Buffer
		purger := new(mocks.MockExportService)
		purger.On("Purge", ctx, now.Add(-48*time.Hour)).Return(3, nil).Once()

		s := NewScheduler(purger, cfg, logging.New(&buf, time.UTC))
		s.now = func() time.Time { return now }

		n, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Contains(t, buf.String(), `"deleted_count":3`)
		assert.Contains(t, buf.String(), `"cutoff":"2026-02-27T12:00:00Z"`)
		purger.AssertExpectations(t)
	})

	t.Run("logs failures", func(t *testing.T) {
		var buf bytes.Buffer
		purger := new(mocks.MockExportService)
		purger.On("Purge", ctx, now.Add(-48*time.Hour)).Return(1, errors.New("storage fail")).Once()

		s := NewScheduler(purger, cfg, logging.New(&buf, time.UTC))
		s.now = func() time.Time { return now }

		n, err := s.RunOnce(ctx)
		assert.EqualError(t, err, "storage fail")
		assert.Equal(t, 1, n)
		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), `"error":"storage fail"`)
	})
}
