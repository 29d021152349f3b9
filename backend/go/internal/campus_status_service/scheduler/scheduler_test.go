package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
)

func init() {
	logger.Init(logrus.PanicLevel)
}

type fakeActiveSource struct {
	ids       []uint
	err       error
	lastSince time.Time
}

func (f *fakeActiveSource) ActiveUniversityIDs(since time.Time) ([]uint, error) {
	f.lastSince = since
	return f.ids, f.err
}

type fakeDispatcher struct {
	jobs    []*models.SummaryJob
	failFor map[uint]error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, job *models.SummaryJob) error {
	if err, ok := f.failFor[job.UniversityID]; ok {
		return err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeTrainer struct {
	calls int
	err   error
}

func (f *fakeTrainer) TrainAll(ctx context.Context) error {
	f.calls++
	return f.err
}

func newTestScheduler(src ActiveSource, d Dispatcher, tr TrainingTrigger, now time.Time) *Scheduler {
	s := New(src, d, tr, Options{
		AggregationInterval: 10 * time.Minute,
		ReportWindow:        10 * time.Minute,
	}, logger.New("test", "", ""))
	s.now = func() time.Time { return now }
	return s
}

func TestAggregationTick_DispatchesOncePerActiveUniversity(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeActiveSource{ids: []uint{1, 2, 3}}
	d := &fakeDispatcher{}

	s := newTestScheduler(src, d, nil, now)
	s.runAggregationTick(context.Background())

	if len(d.jobs) != 3 {
		t.Fatalf("Expected 3 dispatched jobs, got %d", len(d.jobs))
	}
	if !src.lastSince.Equal(now.Add(-10 * time.Minute)) {
		t.Errorf("Expected window start %v, got %v", now.Add(-10*time.Minute), src.lastSince)
	}

	// 同一 tick 内所有任务共享一个 trace_id
	trace := d.jobs[0].TraceID
	if trace == "" {
		t.Fatal("Expected a non-empty trace id")
	}
	for _, job := range d.jobs {
		if job.TraceID != trace {
			t.Errorf("Expected all jobs in one tick to share trace id %s, got %s", trace, job.TraceID)
		}
	}
}

func TestAggregationTick_FailureDoesNotBlockOthers(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeActiveSource{ids: []uint{1, 2, 3}}
	d := &fakeDispatcher{failFor: map[uint]error{2: errors.New("broker unavailable")}}

	s := newTestScheduler(src, d, nil, now)
	s.runAggregationTick(context.Background())

	if len(d.jobs) != 2 {
		t.Fatalf("Expected 2 successful dispatches, got %d", len(d.jobs))
	}
	if d.jobs[0].UniversityID != 1 || d.jobs[1].UniversityID != 3 {
		t.Errorf("Expected universities 1 and 3 dispatched, got %d and %d",
			d.jobs[0].UniversityID, d.jobs[1].UniversityID)
	}
}

func TestAggregationTick_NoActiveUniversities(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeActiveSource{}
	d := &fakeDispatcher{}

	s := newTestScheduler(src, d, nil, now)
	s.runAggregationTick(context.Background())

	if len(d.jobs) != 0 {
		t.Errorf("Expected no jobs dispatched, got %d", len(d.jobs))
	}
}

func TestAggregationTick_SourceErrorIsSwallowed(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeActiveSource{err: errors.New("connection refused")}
	d := &fakeDispatcher{}

	s := newTestScheduler(src, d, nil, now)
	// tick 不得 panic，也不得派发任何任务
	s.runAggregationTick(context.Background())

	if len(d.jobs) != 0 {
		t.Errorf("Expected no jobs dispatched on scan failure, got %d", len(d.jobs))
	}
}

func TestTrainingTick_FailureIsLoggedOnly(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	tr := &fakeTrainer{err: errors.New("ml-server unreachable")}

	s := newTestScheduler(&fakeActiveSource{}, &fakeDispatcher{}, tr, now)
	s.runTrainingTick(context.Background())

	if tr.calls != 1 {
		t.Errorf("Expected 1 training call, got %d", tr.calls)
	}
}

func TestNextTrainingTime(t *testing.T) {
	cases := []struct {
		name    string
		now     time.Time
		weekday time.Weekday
		hour    int
		want    time.Time
	}{
		{
			name:    "later this week",
			now:     time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), // Wednesday
			weekday: time.Sunday,
			hour:    4,
			want:    time.Date(2025, 6, 8, 4, 0, 0, 0, time.UTC),
		},
		{
			name:    "same day before the hour",
			now:     time.Date(2025, 6, 8, 2, 0, 0, 0, time.UTC), // Sunday 02:00
			weekday: time.Sunday,
			hour:    4,
			want:    time.Date(2025, 6, 8, 4, 0, 0, 0, time.UTC),
		},
		{
			name:    "same day after the hour rolls a week",
			now:     time.Date(2025, 6, 8, 5, 0, 0, 0, time.UTC), // Sunday 05:00
			weekday: time.Sunday,
			hour:    4,
			want:    time.Date(2025, 6, 15, 4, 0, 0, 0, time.UTC),
		},
		{
			name:    "exactly at the trigger rolls a week",
			now:     time.Date(2025, 6, 8, 4, 0, 0, 0, time.UTC),
			weekday: time.Sunday,
			hour:    4,
			want:    time.Date(2025, 6, 15, 4, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextTrainingTime(tc.now, tc.weekday, tc.hour)
			if !got.Equal(tc.want) {
				t.Errorf("nextTrainingTime(%v, %v, %d) = %v, want %v",
					tc.now, tc.weekday, tc.hour, got, tc.want)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	cases := []struct {
		in   string
		want time.Weekday
	}{
		{"MON", time.Monday},
		{"TUE", time.Tuesday},
		{"WED", time.Wednesday},
		{"THU", time.Thursday},
		{"FRI", time.Friday},
		{"SAT", time.Saturday},
		{"SUN", time.Sunday},
		{"", time.Sunday},
		{"monday", time.Sunday},
	}

	for _, tc := range cases {
		if got := ParseWeekday(tc.in); got != tc.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	s := New(&fakeActiveSource{}, &fakeDispatcher{}, nil, Options{TrainingHour: -1}, logger.New("test", "", ""))

	if s.opts.AggregationInterval != 10*time.Minute {
		t.Errorf("Expected default aggregation interval 10m, got %v", s.opts.AggregationInterval)
	}
	if s.opts.ReportWindow != 10*time.Minute {
		t.Errorf("Expected default report window 10m, got %v", s.opts.ReportWindow)
	}
	if s.opts.TrainingWeekday != time.Sunday {
		t.Errorf("Expected default training weekday Sunday, got %v", s.opts.TrainingWeekday)
	}
	if s.opts.TrainingHour != 4 {
		t.Errorf("Expected default training hour 4, got %d", s.opts.TrainingHour)
	}
}
