package resolution

import "errors"

var (
	// ErrInvalidSession is returned when a session's rows cannot be keyed by row number.
	ErrInvalidSession = errors.New("invalid import session")
	// ErrUnknownRow is returned for a row number the session does not contain.
	ErrUnknownRow = errors.New("unknown import row")
	// ErrRowInvalid is returned when choosing for a row that failed validation; such rows are always skipped.
	ErrRowInvalid = errors.New("row has validation errors and is always skipped")
	// ErrMissingPersonID is returned by an update decision without a positive person id.
	ErrMissingPersonID = errors.New("update requires a person id")
	// ErrUnexpectedPersonID is returned when a create or skip decision carries a person id.
	ErrUnexpectedPersonID = errors.New("person id is only valid for update")
	// ErrInvalidAction is returned for an action other than create, update or skip.
	ErrInvalidAction = errors.New("invalid decision action")
	// ErrDecisionsIncomplete is returned by Confirm while some rows still need a decision.
	ErrDecisionsIncomplete = errors.New("not every row with duplicates has a decision")
	// ErrCommitInProgress is returned while the decision list is being committed.
	ErrCommitInProgress = errors.New("commit in progress")
	// ErrSessionClosed is returned once the session was committed or cancelled.
	ErrSessionClosed = errors.New("resolution session is closed")
)
