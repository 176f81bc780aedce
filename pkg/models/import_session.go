package models

import (
	"encoding/json"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/confidence"
)

// ImportSession is an Excel import prepared by the batch-import service.
type ImportSession struct {
	SessionID   string      `json:"session_id"`
	Status      string      `json:"status,omitempty"`
	FileName    string      `json:"file_name,omitempty"`
	TotalRows   int         `json:"total_rows,omitempty"`
	RecordsData RecordsData `json:"records_data"`
}

// RecordsData holds the parsed rows of an import session
type RecordsData struct {
	Preview []ImportRow `json:"preview"`
}

// ImportRow is one row of the source file. RowNumber is the 1-based source row
// and the key every decision is joined on.
type ImportRow struct {
	RowNumber           int                  `json:"row_number"`
	Data                json.RawMessage      `json:"data,omitempty"`
	ValidationErrors    []string             `json:"validation_errors"`
	PotentialDuplicates []PotentialDuplicate `json:"potential_duplicates"`
}

// IsInvalid reports whether the row failed validation upstream
func (r ImportRow) IsInvalid() bool {
	return len(r.ValidationErrors) > 0
}

// HasDuplicates reports whether the row has candidates an operator must choose between
func (r ImportRow) HasDuplicates() bool {
	return len(r.PotentialDuplicates) > 0
}

// PotentialDuplicate is an existing person flagged as possibly identical to an imported row.
// MatchScore is a 0-100 percentage computed by the batch-import service.
type PotentialDuplicate struct {
	PersonID     int64          `json:"person_id"`
	MatchScore   int            `json:"match_score"`
	MatchReasons []string       `json:"match_reasons"`
	ExistingData map[string]any `json:"existing_data"`
}

// Confidence converts the server percentage onto the shared [0,1] scale.
func (d PotentialDuplicate) Confidence() float64 {
	return confidence.FromMatchScore(d.MatchScore)
}

// DecisionAction is the operator's resolution of an import row
type DecisionAction string

const (
	ActionCreate DecisionAction = "create"
	ActionUpdate DecisionAction = "update"
	ActionSkip   DecisionAction = "skip"
)

// IsValid reports whether the action is one of the known actions
func (a DecisionAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionSkip:
		return true
	}
	return false
}

// ImportDecision is sent to the batch-import commit endpoint, one per row.
// PersonID is set only for updates.
type ImportDecision struct {
	RowNumber int            `json:"row_number"`
	Action    DecisionAction `json:"action"`
	PersonID  *int64         `json:"person_id,omitempty"`
}

// CommitRequest is the body of the commit call
type CommitRequest struct {
	Decisions []ImportDecision `json:"decisions"`
}

// CommitResult summarises a finished bulk write
type CommitResult struct {
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Skipped int         `json:"skipped"`
	Errors  int         `json:"errors"`
	Details []RowResult `json:"details"`
}

// RowResult is the outcome of one committed row
type RowResult struct {
	RowNumber int            `json:"row_number"`
	Action    DecisionAction `json:"action"`
	PersonID  *int64         `json:"person_id,omitempty"`
	Error     string         `json:"error,omitempty"`
}
