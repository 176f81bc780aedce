package project

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
)

type fakeDB struct {
	query string
	args  []any
}

func (f *fakeDB) GetContext(context.Context, any, string, ...any) error { return errors.New("unused") }
func (f *fakeDB) PingContext(context.Context) error                     { return nil }
func (f *fakeDB) Close() error                                          { return nil }

func (f *fakeDB) SelectContext(_ context.Context, dest any, query string, args ...any) error {
	f.query = query
	f.args = args
	*dest.(*[]models.Project) = []models.Project{}
	return nil
}

func TestRepository_List(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

	projects, err := repo.List(context.Background(), "series")

	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Contains(t, db.query, "FROM projects")
	assert.Contains(t, db.query, "status <> $1")
	assert.Equal(t, []any{"archived", "series"}, db.args)
}
