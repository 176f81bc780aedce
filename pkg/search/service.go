// Package search serves the console's quick search panels: people, companies
// and projects ranked in memory by the fuzzy matcher.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/confidence"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/fuzzy"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/metrics"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
)

var (
	// ErrUnknownCollection is returned for a collection other than persons, companies or projects.
	ErrUnknownCollection = errors.New("unknown search collection")
	// ErrInvalidQuery is returned for out-of-range limits or confidences.
	ErrInvalidQuery = errors.New("invalid search query")
)

// Collections
const (
	Persons   = "persons"
	Companies = "companies"
	Projects  = "projects"
)

var (
	personKeys  = []string{"last_name", "first_name", "middle_name", "email", "phone", "telegram"}
	companyKeys = []string{"name", "description", "email", "website"}
	projectKeys = []string{"title", "genre", "description"}
)

// PersonSource lists the people a search ranks
type PersonSource interface {
	ListActive(ctx context.Context, personType string) ([]models.Person, error)
}

// CompanySource lists the companies a search ranks
type CompanySource interface {
	ListActive(ctx context.Context, companyType string) ([]models.Company, error)
}

// ProjectSource lists the projects a search ranks
type ProjectSource interface {
	List(ctx context.Context, projectType string) ([]models.Project, error)
}

// Config holds the matcher threshold of each collection and the query defaults.
type Config struct {
	PersonThreshold  float64
	CompanyThreshold float64
	ProjectThreshold float64
	DefaultLimit     int
	MinConfidence    float64
}

// Query is one search request
type Query struct {
	Collection string `validate:"required"`
	Text       string
	// Type narrows the collection, e.g. artist or contact for persons.
	Type          string
	MinConfidence *float64 `validate:"omitempty,gte=0,lte=1"`
	Limit         int      `validate:"gte=0,lte=100"`
	Locale        language.Tag
}

// Hit is one ranked record with its display attributes
type Hit struct {
	Item            any                 `json:"item"`
	Score           float64             `json:"score"`
	ConfidenceValue float64             `json:"confidence"`
	Category        confidence.Category `json:"category"`
	Color           string              `json:"color"`
	Label           string              `json:"label"`
	Matches         []fuzzy.Match       `json:"matches,omitempty"`
}

func (h Hit) Confidence() float64 {
	return h.ConfidenceValue
}

// Response is the ranked result of a Query
type Response struct {
	Collection string                        `json:"collection"`
	Query      string                        `json:"query"`
	Total      int                           `json:"total"`
	Results    []Hit                         `json:"results"`
	Groups     map[confidence.Category][]Hit `json:"groups"`
}

// Service ranks collections loaded from the repositories on every query.
type Service struct {
	persons   *index[models.Person]
	companies *index[models.Company]
	projects  *index[models.Project]

	personSource  PersonSource
	companySource CompanySource
	projectSource ProjectSource

	cfg      Config
	validate *validator.Validate
	logger   ectologger.Logger
}

// NewService builds a search service. It fails when a configured threshold is unusable.
func NewService(persons PersonSource, companies CompanySource, projects ProjectSource, cfg Config, logger ectologger.Logger) (*Service, error) {
	s := &Service{
		personSource:  persons,
		companySource: companies,
		projectSource: projects,
		cfg:           cfg,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}

	var err error
	if s.persons, err = newIndex[models.Person](cfg.PersonThreshold, personKeys); err != nil {
		return nil, fmt.Errorf("persons: %w", err)
	}
	if s.companies, err = newIndex[models.Company](cfg.CompanyThreshold, companyKeys); err != nil {
		return nil, fmt.Errorf("companies: %w", err)
	}
	if s.projects, err = newIndex[models.Project](cfg.ProjectThreshold, projectKeys); err != nil {
		return nil, fmt.Errorf("projects: %w", err)
	}
	return s, nil
}

// Search ranks the query's collection. A blank query returns no results without loading anything.
func (s *Service) Search(ctx context.Context, q Query) (*Response, error) {
	ctx, span := tracing.StartSpan(ctx, "search.Service.Search")
	defer span.End()

	if err := s.validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	limit := q.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	minConfidence := s.cfg.MinConfidence
	if q.MinConfidence != nil {
		minConfidence = *q.MinConfidence
	}

	response := &Response{
		Collection: q.Collection,
		Query:      q.Text,
		Results:    make([]Hit, 0),
	}

	var (
		hits []Hit
		err  error
	)
	start := time.Now()

	switch q.Collection {
	case Persons, Companies, Projects:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, q.Collection)
	}

	if strings.TrimSpace(q.Text) != "" {
		switch q.Collection {
		case Persons:
			hits, err = search(ctx, s.persons, q, minConfidence, limit, func(ctx context.Context) ([]models.Person, error) {
				return s.personSource.ListActive(ctx, q.Type)
			})
		case Companies:
			hits, err = search(ctx, s.companies, q, minConfidence, limit, func(ctx context.Context) ([]models.Company, error) {
				return s.companySource.ListActive(ctx, q.Type)
			})
		case Projects:
			hits, err = search(ctx, s.projects, q, minConfidence, limit, func(ctx context.Context) ([]models.Project, error) {
				return s.projectSource.List(ctx, q.Type)
			})
		}
	}
	if err != nil {
		return nil, err
	}

	if hits != nil {
		response.Results = hits
	}
	response.Total = len(response.Results)
	response.Groups = confidence.GroupByCategory(response.Results)

	metrics.RecordSearch(q.Collection, response.Total, time.Since(start).Seconds())
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"collection": q.Collection,
		"type":       q.Type,
		"results":    response.Total,
	}).Debug("Search completed")

	return response, nil
}

func search[T fuzzy.Searchable](ctx context.Context, ix *index[T], q Query, minConfidence float64, limit int, load func(context.Context) ([]T, error)) ([]Hit, error) {
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	results := ix.search(q.Type, items, q.Text, minConfidence, limit)

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		badge := confidence.NewBadge(r.Confidence(), confidence.FullPalette, q.Locale)
		hits = append(hits, Hit{
			Item:            r.Item,
			Score:           r.Score,
			ConfidenceValue: badge.Confidence,
			Category:        badge.Category,
			Color:           badge.Color,
			Label:           badge.Label,
			Matches:         r.Matches,
		})
	}
	return hits, nil
}

// index keeps one matcher per collection type, rebuilt from a fresh snapshot on every query.
type index[T fuzzy.Searchable] struct {
	cfg fuzzy.Config

	mu       sync.Mutex
	matchers map[string]*fuzzy.Matcher[T]
}

func newIndex[T fuzzy.Searchable](threshold float64, keys []string) (*index[T], error) {
	cfg := fuzzy.DefaultConfig(keys...)
	cfg.Threshold = threshold
	cfg.IncludeMatches = true

	// search relies on cfg being valid
	if _, err := fuzzy.New[T](nil, cfg); err != nil {
		return nil, err
	}
	return &index[T]{cfg: cfg, matchers: make(map[string]*fuzzy.Matcher[T])}, nil
}

// search loads items into the matcher of kind and queries it under one lock,
// so the results always come from this call's items.
func (ix *index[T]) search(kind string, items []T, text string, minConfidence float64, limit int) []fuzzy.Result[T] {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	m, ok := ix.matchers[kind]
	if !ok {
		m, _ = fuzzy.New(items, ix.cfg)
		ix.matchers[kind] = m
	} else {
		m.UpdateItems(items)
	}
	return m.SearchWithMinConfidence(text, minConfidence, limit)
}
