// Package ledger builds double-entry accounting entries from reconciliation
// leftovers and keeps track of what was already exported in a session.
package ledger

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/params"
)

// DefaultMaxNarrativeLength is the rune limit of a grouped entry narrative.
const DefaultMaxNarrativeLength = 200

// groupSeparator joins item descriptions in a grouped narrative.
const groupSeparator = " / "

// ParameterResolver resolves accounting parameters for a card and an intent.
type ParameterResolver interface {
	Resolve(cardName string, intent params.Intent) (model.AccountingParameter, bool)
}

// Builder turns source items into accounting entries.
type Builder struct {
	resolver           ParameterResolver
	maxNarrativeLength int
}

// NewBuilder creates a Builder. A non-positive maxNarrativeLength uses
// DefaultMaxNarrativeLength.
func NewBuilder(resolver ParameterResolver, maxNarrativeLength int) *Builder {
	if maxNarrativeLength <= 0 {
		maxNarrativeLength = DefaultMaxNarrativeLength
	}
	return &Builder{
		resolver:           resolver,
		maxNarrativeLength: maxNarrativeLength,
	}
}

// PerItemResult is the output of BuildPerItem.
type PerItemResult struct {
	Entries []model.AccountingEntry
	// Dropped counts items left out because no parameter with a debit
	// account resolved for the card and intent.
	Dropped int
}

// BuildPerItem builds one entry per item. Items whose resolved debit account
// is empty are dropped and counted.
func (b *Builder) BuildPerItem(cardName string, intent params.Intent, items []model.SourceItem) PerItemResult {
	result := PerItemResult{Entries: make([]model.AccountingEntry, 0, len(items))}

	for _, item := range items {
		param, _ := b.resolver.Resolve(cardName, intent)
		entry := newEntry(param, item.Date, item.Description, item.Amount)
		entry.Origin = originOf(item.Kind)
		entry.SourceIDs = []string{item.ID}

		if entry.DebitAccount == "" {
			result.Dropped++
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result
}

// BuildGrouped builds a single entry for the whole group: the amounts are
// summed, the first item's date is used and the descriptions are joined and
// truncated. It returns false when the group is empty or no parameter with a
// debit account resolves.
func (b *Builder) BuildGrouped(cardName string, intent params.Intent, items []model.SourceItem) (model.AccountingEntry, bool) {
	if len(items) == 0 {
		return model.AccountingEntry{}, false
	}

	param, _ := b.resolver.Resolve(cardName, intent)
	if param.DebitAccount == "" {
		return model.AccountingEntry{}, false
	}

	total := decimal.Zero
	descriptions := make([]string, 0, len(items))
	ids := make([]string, 0, len(items))
	origin := model.OriginTransaction
	for _, item := range items {
		total = total.Add(item.Amount)
		descriptions = append(descriptions, item.Description)
		ids = append(ids, item.ID)
		if item.Kind != model.KindTransaction {
			origin = model.OriginAllocation
		}
	}

	narrative := truncateRunes(strings.Join(descriptions, groupSeparator), b.maxNarrativeLength)
	entry := newEntry(param, items[0].Date, narrative, total)
	entry.Origin = origin
	entry.SourceIDs = ids

	return entry, true
}

func newEntry(p model.AccountingParameter, date, narrative string, amount decimal.Decimal) model.AccountingEntry {
	return model.AccountingEntry{
		Date:              date,
		Narrative:         narrative,
		Amount:            amount,
		DebitAccount:      p.DebitAccount,
		CreditAccount:     p.CreditAccount,
		DebitSubaccount:   p.DebitSubaccount,
		CreditSubaccount:  p.CreditSubaccount,
		Fund:              p.Fund,
		DebitDepartment:   p.DebitDepartment,
		CreditDepartment:  p.CreditDepartment,
		DebitRestriction:  p.DebitRestriction,
		CreditRestriction: p.CreditRestriction,
	}
}

func originOf(kind model.ItemKind) model.Origin {
	if kind == model.KindTransaction {
		return model.OriginTransaction
	}
	return model.OriginAllocation
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
