// Package resolution collects the operator's decisions for the rows of an import
// session that look like existing people, and commits them in one call.
package resolution

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
)

// Committer performs the bulk write for a finished session.
type Committer interface {
	Commit(ctx context.Context, sessionID string, decisions []models.ImportDecision) (*models.CommitResult, error)
}

// RowState is where a row stands in the resolution
type RowState string

const (
	// RowUnresolved has duplicate candidates and no decision yet.
	RowUnresolved RowState = "unresolved"
	// RowDecided has an explicit or automatic decision.
	RowDecided RowState = "decided"
	// RowInvalid failed validation and is always skipped.
	RowInvalid RowState = "invalid"
)

// Status is the lifecycle of a resolution session
type Status string

const (
	StatusOpen       Status = "open"
	StatusCommitting Status = "committing"
	StatusCommitted  Status = "committed"
	StatusCancelled  Status = "cancelled"
)

// Resolver owns the decision accumulator of one import session. It is safe for
// concurrent use, but one Resolver must never serve two sessions.
type Resolver struct {
	mu sync.Mutex

	sessionID string
	rows      []models.ImportRow
	index     map[int]int

	// decisions holds explicit operator choices, keyed by row number.
	decisions map[int]models.ImportDecision
	status    Status
	result    *models.CommitResult

	committer Committer
	logger    ectologger.Logger
}

// NewResolver starts resolving session. Rows are kept in row-number order.
func NewResolver(session *models.ImportSession, committer Committer, logger ectologger.Logger) (*Resolver, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: no session", ErrInvalidSession)
	}

	rows := make([]models.ImportRow, len(session.RecordsData.Preview))
	copy(rows, session.RecordsData.Preview)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RowNumber < rows[j].RowNumber
	})

	index := make(map[int]int, len(rows))
	for i, row := range rows {
		if row.RowNumber <= 0 {
			return nil, fmt.Errorf("%w: row number %d is not positive", ErrInvalidSession, row.RowNumber)
		}
		if _, ok := index[row.RowNumber]; ok {
			return nil, fmt.Errorf("%w: row number %d appears twice", ErrInvalidSession, row.RowNumber)
		}
		index[row.RowNumber] = i
	}

	return &Resolver{
		sessionID: session.SessionID,
		rows:      rows,
		index:     index,
		decisions: make(map[int]models.ImportDecision),
		status:    StatusOpen,
		committer: committer,
		logger:    logger,
	}, nil
}

// SessionID returns the id of the session being resolved
func (r *Resolver) SessionID() string {
	return r.sessionID
}

// ChooseCreate imports the row as a new person.
func (r *Resolver) ChooseCreate(rowNumber int) error {
	return r.Choose(rowNumber, models.ActionCreate, nil)
}

// ChooseUpdate merges the row into an existing person.
func (r *Resolver) ChooseUpdate(rowNumber int, personID int64) error {
	return r.Choose(rowNumber, models.ActionUpdate, &personID)
}

// ChooseSkip leaves the row out of the import.
func (r *Resolver) ChooseSkip(rowNumber int) error {
	return r.Choose(rowNumber, models.ActionSkip, nil)
}

// Choose records a decision for a row. Deciding a row again replaces the earlier decision.
func (r *Resolver) Choose(rowNumber int, action models.DecisionAction, personID *int64) error {
	decision, err := newDecision(rowNumber, action, personID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen(); err != nil {
		return err
	}

	i, ok := r.index[rowNumber]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRow, rowNumber)
	}
	if r.rows[i].IsInvalid() {
		return fmt.Errorf("%w: row %d", ErrRowInvalid, rowNumber)
	}

	r.decisions[rowNumber] = decision
	return nil
}

func newDecision(rowNumber int, action models.DecisionAction, personID *int64) (models.ImportDecision, error) {
	if !action.IsValid() {
		return models.ImportDecision{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	decision := models.ImportDecision{RowNumber: rowNumber, Action: action}
	if action == models.ActionUpdate {
		if personID == nil || *personID <= 0 {
			return models.ImportDecision{}, fmt.Errorf("%w: row %d", ErrMissingPersonID, rowNumber)
		}
		id := *personID
		decision.PersonID = &id
	} else if personID != nil {
		return models.ImportDecision{}, fmt.Errorf("%w: row %d", ErrUnexpectedPersonID, rowNumber)
	}
	return decision, nil
}

func (r *Resolver) checkOpen() error {
	switch r.status {
	case StatusCommitting:
		return ErrCommitInProgress
	case StatusCommitted, StatusCancelled:
		return ErrSessionClosed
	}
	return nil
}

// State reports where a row stands and its current decision, if any.
func (r *Resolver) State(rowNumber int) (RowState, *models.ImportDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[rowNumber]
	if !ok {
		return "", nil, fmt.Errorf("%w: %d", ErrUnknownRow, rowNumber)
	}
	state, decision := r.rowState(r.rows[i])
	return state, decision, nil
}

// rowState must be called with mu held.
func (r *Resolver) rowState(row models.ImportRow) (RowState, *models.ImportDecision) {
	if row.IsInvalid() {
		return RowInvalid, &models.ImportDecision{RowNumber: row.RowNumber, Action: models.ActionSkip}
	}
	if d, ok := r.decisions[row.RowNumber]; ok {
		return RowDecided, &d
	}
	if !row.HasDuplicates() {
		return RowDecided, &models.ImportDecision{RowNumber: row.RowNumber, Action: models.ActionCreate}
	}
	return RowUnresolved, nil
}

// NeedsDecisions reports whether any valid row has duplicate candidates.
func (r *Resolver) NeedsDecisions() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ambiguousRows()) > 0
}

// ambiguousRows lists the row numbers an operator has to decide. Must be called with mu held.
func (r *Resolver) ambiguousRows() []int {
	ambiguous := ectolinq.Filter(r.rows, func(row models.ImportRow) bool {
		return !row.IsInvalid() && row.HasDuplicates()
	})
	return ectolinq.Map(ambiguous, func(row models.ImportRow) int {
		return row.RowNumber
	})
}

// AllDecided holds once every row with duplicate candidates has a decision.
func (r *Resolver) AllDecided() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending()) == 0
}

// Pending returns the undecided rows with duplicate candidates, in row-number order.
func (r *Resolver) Pending() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending()
}

func (r *Resolver) pending() []int {
	pending := make([]int, 0)
	for _, n := range r.ambiguousRows() {
		if _, ok := r.decisions[n]; !ok {
			pending = append(pending, n)
		}
	}
	return pending
}

// Progress is the decided share of the rows with duplicate candidates, in [0,1].
// A session without such rows is complete.
func (r *Resolver) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ambiguous := r.ambiguousRows()
	if len(ambiguous) == 0 {
		return 1
	}
	decided := len(ambiguous) - len(r.pending())
	return float64(decided) / float64(len(ambiguous))
}

// Decisions returns the decision of every decided row, automatic ones included,
// in row-number order.
func (r *Resolver) Decisions() []models.ImportDecision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consolidated()
}

func (r *Resolver) consolidated() []models.ImportDecision {
	decisions := make([]models.ImportDecision, 0, len(r.rows))
	for _, row := range r.rows {
		if _, d := r.rowState(row); d != nil {
			decisions = append(decisions, *d)
		}
	}
	return decisions
}

// Status returns the lifecycle state of the session
func (r *Resolver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the commit summary once the session is committed.
func (r *Resolver) Result() *models.CommitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Confirm sends one decision per row to the committer. It fails without calling
// the committer while rows are pending. Choices are rejected until the call
// returns. A commit error is returned unchanged and every decision is kept, so
// the operator can retry.
func (r *Resolver) Confirm(ctx context.Context) (*models.CommitResult, error) {
	r.mu.Lock()
	if err := r.checkOpen(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if pending := r.pending(); len(pending) > 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: rows %v", ErrDecisionsIncomplete, pending)
	}
	decisions := r.consolidated()
	r.status = StatusCommitting
	r.mu.Unlock()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": r.sessionID,
		"decisions":  len(decisions),
	})
	log.Info("Committing import decisions")

	result, err := r.committer.Commit(ctx, r.sessionID, decisions)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.status = StatusOpen
		log.WithError(err).Warn("Import commit failed, decisions kept")
		return nil, err
	}

	if result == nil {
		result = &models.CommitResult{}
	}
	r.status = StatusCommitted
	r.result = result
	r.decisions = nil
	log.WithFields(map[string]any{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"errors":  result.Errors,
	}).Info("Import committed")
	return result, nil
}

// AutoCommit confirms right away when no row needs an operator decision.
// It reports false, without committing, otherwise.
func (r *Resolver) AutoCommit(ctx context.Context) (*models.CommitResult, bool, error) {
	if r.NeedsDecisions() {
		return nil, false, nil
	}
	result, err := r.Confirm(ctx)
	if err != nil {
		return nil, true, err
	}
	return result, true, nil
}

// Cancel closes the session and discards every decision.
func (r *Resolver) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen(); err != nil {
		return err
	}
	r.status = StatusCancelled
	r.decisions = nil
	return nil
}
