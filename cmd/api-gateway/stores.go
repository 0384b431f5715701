package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scheduler/internal/repository"
	"github.com/noah-isme/sma-adp-scheduler/internal/service"
	"github.com/noah-isme/sma-adp-scheduler/pkg/config"
	"github.com/noah-isme/sma-adp-scheduler/pkg/database"
)

type stores struct {
	assignments repository.AssignmentStore
	teachers    repository.TeacherFinder
	classes     repository.ClassFinder
}

// openStores builds the assignment store and directories for the configured
// backend. The memory backend never touches Postgres.
func openStores(ctx context.Context, cfg *config.Config, metricsSvc *service.MetricsService, logr *zap.Logger) (stores, func(), error) {
	if cfg.Store.Backend == config.StoreBackendMemory {
		if len(cfg.Store.MemoryTeachers) == 0 || len(cfg.Store.MemoryClasses) == 0 {
			logr.Warn("memory store without seeded directory; any teacher or class id is accepted")
		}
		return stores{
			assignments: repository.NewMemoryTeacherAssignmentRepository(),
			teachers:    repository.NewMemoryTeacherDirectory(cfg.Store.MemoryTeachers),
			classes:     repository.NewMemoryClassDirectory(cfg.Store.MemoryClasses),
		}, func() {}, nil
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return stores{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return stores{}, nil, fmt.Errorf("ensure schema: %w", err)
	}

	var observe repository.QueryObserver
	if metricsSvc != nil {
		observe = metricsSvc.ObserveDBQuery
	}
	return stores{
		assignments: repository.NewTeacherAssignmentRepository(db, observe),
		teachers:    repository.NewTeacherRepository(db),
		classes:     repository.NewClassRepository(db),
	}, func() { db.Close() }, nil
}
