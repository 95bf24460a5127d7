package ledger

import (
	"time"

	"github.com/erp/kernel/internal/domain/shared"
	"github.com/erp/kernel/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalStatus of a journal entry. The kernel only ever creates POSTED entries.
type JournalStatus string

const (
	JournalStatusPosted JournalStatus = "POSTED"
)

// Dimensions are optional analytic tags on a journal line
type Dimensions struct {
	SegmentID    *uuid.UUID `json:"segment_id,omitempty"`
	CostCenterID *uuid.UUID `json:"cost_center_id,omitempty"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty"`
}

func (d Dimensions) clone() Dimensions {
	return Dimensions{
		SegmentID:    cloneID(d.SegmentID),
		CostCenterID: cloneID(d.CostCenterID),
		ProjectID:    cloneID(d.ProjectID),
	}
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// JournalLineDraft is one proposed line. Exactly one of Debit and Credit must be non-zero.
type JournalLineDraft struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	Dimensions  Dimensions
}

// DebitLine creates a line debiting the account
func DebitLine(accountID uuid.UUID, amount decimal.Decimal, description string) JournalLineDraft {
	return JournalLineDraft{AccountID: accountID, Debit: amount, Credit: decimal.Zero, Description: description}
}

// CreditLine creates a line crediting the account
func CreditLine(accountID uuid.UUID, amount decimal.Decimal, description string) JournalLineDraft {
	return JournalLineDraft{AccountID: accountID, Debit: decimal.Zero, Credit: amount, Description: description}
}

// JournalDraft is a proposed journal submitted to the posting service
type JournalDraft struct {
	TenantID    uuid.UUID
	EntityID    uuid.UUID
	JournalDate time.Time
	Currency    valueobject.Currency
	Reference   string
	Memo        string
	Origin      shared.OriginCellMeta
	Lines       []JournalLineDraft
}

// TotalDebit sums the debit column exactly
func (d JournalDraft) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit column exactly
func (d JournalDraft) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// IsBalanced reports whether debits equal credits exactly
func (d JournalDraft) IsBalanced() bool {
	return d.TotalDebit().Equal(d.TotalCredit())
}

// JournalLine is a line of a posted journal
type JournalLine struct {
	LineNo      int
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	Dimensions  Dimensions
}

// JournalEntry is a posted, immutable journal. It is created only by the
// posting service; correction happens through a new entry.
type JournalEntry struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	EntityID    uuid.UUID
	PeriodID    uuid.UUID
	JournalDate time.Time
	Currency    valueobject.Currency
	Reference   string
	Memo        string
	Origin      shared.OriginCellMeta
	Status      JournalStatus
	PostedAt    time.Time
	Lines       []JournalLine
}

// NewPostedJournal materialises a validated draft into a posted entry.
// Lines are copied so later changes to the draft never reach the entry.
func NewPostedJournal(id uuid.UUID, periodID uuid.UUID, postedAt time.Time, draft JournalDraft) *JournalEntry {
	lines := make([]JournalLine, len(draft.Lines))
	for i, l := range draft.Lines {
		lines[i] = JournalLine{
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			Dimensions:  l.Dimensions.clone(),
		}
	}
	return &JournalEntry{
		ID:          id,
		TenantID:    draft.TenantID,
		EntityID:    draft.EntityID,
		PeriodID:    periodID,
		JournalDate: shared.DateOf(draft.JournalDate),
		Currency:    draft.Currency,
		Reference:   draft.Reference,
		Memo:        draft.Memo,
		Origin:      draft.Origin,
		Status:      JournalStatusPosted,
		PostedAt:    postedAt,
		Lines:       lines,
	}
}

// TotalDebit sums the debit column of the posted entry
func (j *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit column of the posted entry
func (j *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// Clone returns a deep copy. Stores hand out clones so callers cannot alter history.
func (j *JournalEntry) Clone() *JournalEntry {
	cp := *j
	cp.Lines = make([]JournalLine, len(j.Lines))
	for i, l := range j.Lines {
		l.Dimensions = l.Dimensions.clone()
		cp.Lines[i] = l
	}
	return &cp
}
