package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scheduler/pkg/errors"
	"github.com/noah-isme/sma-adp-scheduler/pkg/logger"
)

type assignmentCounter interface {
	ActiveCounts(ctx context.Context) ([]models.AssignmentCount, error)
}

// StatisticsService summarises active assignments. It never takes write locks.
type StatisticsService struct {
	store   assignmentCounter
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatisticsService constructs the aggregator.
func NewStatisticsService(store assignmentCounter, timeout time.Duration, logger *zap.Logger) *StatisticsService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{store: store, timeout: timeout, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Overview counts active assignments per subject, teacher and class.
func (s *StatisticsService) Overview(ctx context.Context) (*models.AssignmentOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.ActiveCounts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
		}
		logger.FromContext(ctx, s.logger).Error("failed to aggregate assignments", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment statistics")
	}

	overview := &models.AssignmentOverview{
		BySubject:   make(map[string]int),
		ByTeacher:   make(map[string]int),
		ByClass:     make(map[string]int),
		GeneratedAt: s.now(),
	}
	for _, row := range rows {
		overview.TotalAssignments += row.Count
		overview.BySubject[row.Subject] += row.Count
		overview.ByTeacher[row.TeacherID] += row.Count
		overview.ByClass[row.ClassID] += row.Count
	}
	overview.TotalTeachers = len(overview.ByTeacher)
	overview.TotalClasses = len(overview.ByClass)
	return overview, nil
}
