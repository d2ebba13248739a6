package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/sunweg-integration/internal/pkg/config"
	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/anicoll/sunweg-integration/internal/pkg/poller"
	"github.com/anicoll/sunweg-integration/internal/pkg/sunweg"
)

func testConfig() *config.Config {
	return &config.Config{PollSchedule: "@every 1h"}
}

// TestRun_AuthenticationError tests that run() returns the error of the first poll.
func TestRun_AuthenticationError(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	client := &MockSunwegClient{
		AuthenticateFunc: func(ctx context.Context) (bool, error) {
			return false, sunweg.ErrAuthentication
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, testConfig(), client, make(chan error), logger, nil)
	assert.ErrorIs(t, err, sunweg.ErrAuthentication)
}

// TestRun_InvalidSchedule tests that a bad cron expression stops the service.
func TestRun_InvalidSchedule(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	cfg.PollSchedule = "not a schedule"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, cfg, &MockSunwegClient{}, make(chan error), logger, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

// TestRun_ContextCancellation tests that run() exits gracefully when the context is cancelled.
func TestRun_ContextCancellation(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	polled := make(chan struct{}, 1)
	client := &MockSunwegClient{
		ListPlantsFunc: func(ctx context.Context) ([]*model.Plant, error) {
			polled <- struct{}{}
			return []*model.Plant{{ID: 1}}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())

	var runErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = run(ctx, testConfig(), client, make(chan error), logger, nil)
	}()

	select {
	case <-polled:
	case <-time.After(5 * time.Second):
		t.Fatal("first poll never happened")
	}
	cancel()
	wg.Wait()

	assert.ErrorIs(t, runErr, context.Canceled)
}

// TestRun_AsyncErrors tests which scheduler errors stop the service.
func TestRun_AsyncErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "credentials rejected",
			err:     errors.Join(poller.ErrCron, sunweg.ErrAuthentication),
			wantErr: sunweg.ErrAuthentication,
		},
		{
			name:    "cleanup failed",
			err:     errors.Join(errCleanup, errors.New("connection refused")),
			wantErr: errCleanup,
		},
		{
			name:    "transient poll failure",
			err:     errors.Join(poller.ErrCron, errors.New("connection reset")),
			wantErr: context.DeadlineExceeded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			logger := zaptest.NewLogger(t)
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			errorChan := make(chan error, 1)
			errorChan <- tc.err

			err := run(ctx, testConfig(), &MockSunwegClient{}, errorChan, logger, nil)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

type mockCleaner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockCleaner) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func TestCronDbCleanup(t *testing.T) {
	t.Parallel()

	t.Run("initial cleanup fails", func(t *testing.T) {
		db := &mockCleaner{err: errors.New("boom")}
		err := cronDbCleanup(context.Background(), db, "0 3 * * *", make(chan error))
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 1, db.calls)
	})

	t.Run("bad schedule", func(t *testing.T) {
		db := &mockCleaner{}
		err := cronDbCleanup(context.Background(), db, "nope", make(chan error))
		assert.Error(t, err)
	})

	t.Run("stops with context", func(t *testing.T) {
		db := &mockCleaner{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := cronDbCleanup(ctx, db, "0 3 * * *", make(chan error))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, db.calls)
	})
}

func TestPrintPlants(t *testing.T) {
	t.Parallel()

	completed := []int{}
	client := &MockSunwegClient{
		ListPlantsFunc: func(ctx context.Context) ([]*model.Plant, error) {
			return []*model.Plant{{
				ID:   16925,
				Name: "Plant Name",
				Inverters: []*model.Inverter{
					{ID: 21255, Name: "INVERSOR1"},
					{ID: 21256, Name: "INVERSOR2", PowerFactor: 1, MPPTs: []*model.MPPT{{Name: "1"}}},
				},
			}}, nil
		},
		CompleteInverterFunc: func(ctx context.Context, inv *model.Inverter) error {
			completed = append(completed, inv.ID)
			inv.Frequency = 60
			return nil
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printPlants(context.Background(), client, &buf))
	assert.Equal(t, []int{21255}, completed)

	var plants []model.Plant
	require.NoError(t, json.Unmarshal(buf.Bytes(), &plants))
	require.Len(t, plants, 1)
	assert.Equal(t, 60.0, plants[0].Inverters[0].Frequency)
}

func TestPrintPlants_Error(t *testing.T) {
	t.Parallel()

	client := &MockSunwegClient{
		ListPlantsFunc: func(ctx context.Context) ([]*model.Plant, error) {
			return nil, errors.New("list failed")
		},
	}
	var buf bytes.Buffer
	assert.EqualError(t, printPlants(context.Background(), client, &buf), "list failed")
	assert.Zero(t, buf.Len())
}

func TestPrintStats(t *testing.T) {
	t.Parallel()

	inverterID := 21255
	client := &MockSunwegClient{
		MonthStatsProductionByIDFunc: func(ctx context.Context, year, month, plantID int, inv *int) ([]model.ProductionStats, error) {
			assert.Equal(t, 2023, year)
			assert.Equal(t, 12, month)
			assert.Equal(t, 16925, plantID)
			assert.Equal(t, &inverterID, inv)
			return []model.ProductionStats{{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Production: 12.5, Prognostic: 10}}, nil
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printStats(context.Background(), client, &buf, 2023, 12, 16925, &inverterID))

	var stats []model.ProductionStats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 12.5, stats[0].Production)
}
