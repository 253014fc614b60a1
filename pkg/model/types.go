// Package model defines the entities shared by the reconciliation engine:
// statement transactions, allocation entries, accounting parameters and the
// ledger entries built from them.
package model

import (
	"github.com/shopspring/decimal"
)

// FullMatchScore is the score carried by every reconciled pair.
// Matching is binary, so the score is a constant tag and not a confidence metric.
const FullMatchScore = 100

// Transaction represents one line billed on the card statement.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // dd/mm/yy or dd/mm/yyyy
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Allocation represents one line of the accounting allocation report.
type Allocation struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`                  // fact date
	PostingDate string          `json:"postingDate,omitempty"` // accounting date, optional
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CostCenter  string          `json:"costCenter,omitempty"`
	Batch       string          `json:"batch,omitempty"`
}

// Card is a registered corporate card.
type Card struct {
	Name       string `json:"name"`
	Subaccount string `json:"subaccount"`
}

// AccountingParameter holds the debit/credit coordinates configured for a card
// and a motive (free-text intent label).
type AccountingParameter struct {
	ID                string `json:"id"`
	CardName          string `json:"cardName"`
	Motive            string `json:"motive"`
	DebitAccount      string `json:"debitAccount"`
	CreditAccount     string `json:"creditAccount"`
	DebitSubaccount   string `json:"debitSubaccount"`
	CreditSubaccount  string `json:"creditSubaccount"`
	Fund              string `json:"fund"`
	DebitDepartment   string `json:"debitDepartment"`
	CreditDepartment  string `json:"creditDepartment"`
	DebitRestriction  string `json:"debitRestriction"`
	CreditRestriction string `json:"creditRestriction"`
}

// ReconciledPair is a transaction matched to an allocation.
type ReconciledPair struct {
	Transaction Transaction `json:"transaction"`
	Allocation  Allocation  `json:"allocation"`
	MatchScore  int         `json:"matchScore"`
}

// Origin tells which kind of source item an entry was built from.
type Origin string

const (
	OriginTransaction Origin = "transaction"
	OriginAllocation  Origin = "allocation"
)

// AccountingEntry is one double-entry record ready for serialization.
// Each entry expands into a debit and a credit line when rendered.
type AccountingEntry struct {
	Date              string          `json:"date"`
	Narrative         string          `json:"narrative"`
	Amount            decimal.Decimal `json:"amount"`
	DebitAccount      string          `json:"debitAccount"`
	CreditAccount     string          `json:"creditAccount"`
	DebitSubaccount   string          `json:"debitSubaccount"`
	CreditSubaccount  string          `json:"creditSubaccount"`
	Fund              string          `json:"fund"`
	DebitDepartment   string          `json:"debitDepartment"`
	CreditDepartment  string          `json:"creditDepartment"`
	DebitRestriction  string          `json:"debitRestriction"`
	CreditRestriction string          `json:"creditRestriction"`
	Origin            Origin          `json:"origin"`
	SourceIDs         []string        `json:"sourceIds"`
}

// ItemKind distinguishes the two source collections.
type ItemKind string

const (
	KindTransaction ItemKind = "transaction"
	KindAllocation  ItemKind = "allocation"
)

// SourceItem is the common view of a transaction or an allocation used when
// building entries and reports.
type SourceItem struct {
	ID          string
	Kind        ItemKind
	Date        string
	Description string
	Amount      decimal.Decimal
	Batch       string
}

// Item returns the source view of a transaction.
func (t Transaction) Item() SourceItem {
	return SourceItem{
		ID:          t.ID,
		Kind:        KindTransaction,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
	}
}

// Item returns the source view of an allocation.
// The fact date is used, matching what the allocation report shows.
func (a Allocation) Item() SourceItem {
	return SourceItem{
		ID:          a.ID,
		Kind:        KindAllocation,
		Date:        a.Date,
		Description: a.Description,
		Amount:      a.Amount,
		Batch:       a.Batch,
	}
}

// TransactionItems converts transactions to source items, preserving order.
func TransactionItems(txs []Transaction) []SourceItem {
	items := make([]SourceItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, tx.Item())
	}
	return items
}

// AllocationItems converts allocations to source items, preserving order.
func AllocationItems(allocs []Allocation) []SourceItem {
	items := make([]SourceItem, 0, len(allocs))
	for _, a := range allocs {
		items = append(items, a.Item())
	}
	return items
}
