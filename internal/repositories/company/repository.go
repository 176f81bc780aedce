package company

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

// Repository reads companies for client-side matching
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new company repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "companies"

// ListActive returns every active company, optionally of one type.
func (r *Repository) ListActive(ctx context.Context, companyType string) ([]models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "CompanyRepository.ListActive")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.DatabaseQueryDuration.WithLabelValues("companies.list").Observe(time.Since(start).Seconds())
	}()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "company_type", "description", "website", "email", "is_active", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(sb.Equal("is_active", true))
	if companyType != "" {
		sb.Where(sb.Equal("company_type", companyType))
	}
	sb.OrderBy("id")

	query, args := sb.Build()

	companies := make([]models.Company, 0)
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list companies")
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	return companies, nil
}
