package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSweepService struct {
	mock.Mock
}

func (m *MockSweepService) GenerateDue(ctx context.Context, asOf time.Time) (portssvc.SweepReport, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(portssvc.SweepReport), args.Error(1)
}

func (m *MockSweepService) SendReminders(ctx context.Context, asOf time.Time) (portssvc.SweepReport, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(portssvc.SweepReport), args.Error(1)
}

var _ portssvc.SweepSvc = (*MockSweepService)(nil)

func TestJobs_RunSweepsAtClockTime(t *testing.T) {
	now := time.Date(2025, time.March, 20, 2, 0, 0, 0, time.UTC)
	sweep := new(MockSweepService)
	sweep.On("GenerateDue", mock.Anything, now).Return(portssvc.SweepReport{Definitions: 2, Processed: 3}, nil).Once()
	sweep.On("SendReminders", mock.Anything, now).Return(portssvc.SweepReport{}, errors.New("broker down")).Once()

	jobs := worker.NewJobs(sweep, slog.Default())
	jobs.SetClock(func() time.Time { return now })

	jobs.GenerateDue()
	jobs.SendReminders()

	sweep.AssertExpectations(t)
}

func TestJobs_ContextHasDeadline(t *testing.T) {
	sweep := new(MockSweepService)
	sweep.On("GenerateDue", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(portssvc.SweepReport{}, nil).Once()

	worker.NewJobs(sweep, slog.Default()).GenerateDue()

	sweep.AssertExpectations(t)
}

func TestScheduler_RegistersConfiguredJobs(t *testing.T) {
	jobs := worker.NewJobs(new(MockSweepService), slog.Default())

	scheduler := worker.NewScheduler(jobs, slog.Default(), "0 2 * * *", "")
	require.NoError(t, scheduler.Start())
	assert.Equal(t, 1, scheduler.Entries())
	<-scheduler.Stop().Done()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	jobs := worker.NewJobs(new(MockSweepService), slog.Default())

	scheduler := worker.NewScheduler(jobs, slog.Default(), "every now and then", "0 8 * * *")
	assert.Error(t, scheduler.Start())
}
