package project

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/database"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/metrics"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
)

// Repository reads projects for client-side matching
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new project repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "projects"

// archived projects are never offered as matches
const statusArchived = "archived"

// List returns the non-archived projects, optionally of one type.
func (r *Repository) List(ctx context.Context, projectType string) ([]models.Project, error) {
	ctx, span := tracing.StartSpan(ctx, "ProjectRepository.List")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.DatabaseQueryDuration.WithLabelValues("projects.list").Observe(time.Since(start).Seconds())
	}()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "title", "project_type", "status", "genre", "description", "company_id", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(sb.NotEqual("status", statusArchived))
	if projectType != "" {
		sb.Where(sb.Equal("project_type", projectType))
	}
	sb.OrderBy("id")

	query, args := sb.Build()

	projects := make([]models.Project, 0)
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list projects")
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}
