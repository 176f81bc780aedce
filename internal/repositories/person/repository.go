package person

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

// Repository reads people for client-side matching
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new person repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "persons"

var columns = []string{
	"id", "person_type", "first_name", "last_name", "middle_name",
	"email", "phone", "telegram", "company_id", "is_active", "created_at", "updated_at",
}

// ListActive returns every active person, optionally of one type, ordered by id.
func (r *Repository) ListActive(ctx context.Context, personType string) ([]models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.ListActive")
	defer span.End()
	defer observe(time.Now())

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("is_active", true))
	if personType != "" {
		sb.Where(sb.Equal("person_type", personType))
	}
	sb.OrderBy("id")

	query, args := sb.Build()

	people := make([]models.Person, 0)
	if err := r.db.SelectContext(ctx, &people, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("person_type", personType).Error("failed to list persons")
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}

	return people, nil
}

func observe(start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues("persons.list").Observe(time.Since(start).Seconds())
}
