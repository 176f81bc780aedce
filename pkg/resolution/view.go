package resolution

import (
	"encoding/json"

	"golang.org/x/text/language"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/confidence"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
)

// View is a point-in-time copy of a resolution session for the review screen.
type View struct {
	SessionID  string               `json:"session_id"`
	Status     Status               `json:"status"`
	Progress   float64              `json:"progress"`
	AllDecided bool                 `json:"all_decided"`
	Pending    []int                `json:"pending"`
	Rows       []RowView            `json:"rows"`
	Result     *models.CommitResult `json:"result,omitempty"`
}

// RowView is one row of the review screen
type RowView struct {
	RowNumber        int                    `json:"row_number"`
	State            RowState               `json:"state"`
	Data             json.RawMessage        `json:"data,omitempty"`
	ValidationErrors []string               `json:"validation_errors"`
	Decision         *models.ImportDecision `json:"decision,omitempty"`
	Candidates       []CandidateView        `json:"candidates"`
}

// CandidateView is a duplicate candidate with its display attributes
type CandidateView struct {
	PersonID     int64               `json:"person_id"`
	MatchScore   int                 `json:"match_score"`
	MatchReasons []string            `json:"match_reasons"`
	ExistingData map[string]any      `json:"existing_data"`
	Confidence   float64             `json:"confidence"`
	Category     confidence.Category `json:"category"`
	Color        string              `json:"color"`
	Label        string              `json:"label"`
}

// View snapshots the resolver. Candidate labels use the default locale until Localize is called.
func (r *Resolver) View() *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	view := &View{
		SessionID: r.sessionID,
		Status:    r.status,
		Pending:   r.pending(),
		Rows:      make([]RowView, 0, len(r.rows)),
		Result:    r.result,
	}
	view.AllDecided = len(view.Pending) == 0

	ambiguous := len(r.ambiguousRows())
	view.Progress = 1
	if ambiguous > 0 {
		view.Progress = float64(ambiguous-len(view.Pending)) / float64(ambiguous)
	}

	for _, row := range r.rows {
		state, decision := r.rowState(row)
		view.Rows = append(view.Rows, RowView{
			RowNumber:        row.RowNumber,
			State:            state,
			Data:             row.Data,
			ValidationErrors: nonNil(row.ValidationErrors),
			Decision:         decision,
			Candidates:       candidateViews(row.PotentialDuplicates),
		})
	}

	return view
}

func candidateViews(duplicates []models.PotentialDuplicate) []CandidateView {
	views := make([]CandidateView, 0, len(duplicates))
	for _, d := range duplicates {
		badge := confidence.NewBadge(d.Confidence(), confidence.CompactPalette, language.Russian)
		views = append(views, CandidateView{
			PersonID:     d.PersonID,
			MatchScore:   d.MatchScore,
			MatchReasons: nonNil(d.MatchReasons),
			ExistingData: d.ExistingData,
			Confidence:   badge.Confidence,
			Category:     badge.Category,
			Color:        badge.Color,
			Label:        badge.Label,
		})
	}
	return views
}

// Localize rewrites candidate labels for locale.
func (v *View) Localize(locale language.Tag) *View {
	for i := range v.Rows {
		for j := range v.Rows[i].Candidates {
			c := &v.Rows[i].Candidates[j]
			c.Label = confidence.Label(c.Category, locale)
		}
	}
	return v
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
