package params

import (
	"strings"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// Resolver picks the accounting parameter for a card and an intent.
type Resolver struct {
	parameters []model.AccountingParameter
	keywords   KeywordTable
}

// NewResolver creates a Resolver over parameters in configuration order.
// A nil keyword table uses DefaultKeywords.
func NewResolver(parameters []model.AccountingParameter, keywords KeywordTable) *Resolver {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	return &Resolver{
		parameters: append([]model.AccountingParameter(nil), parameters...),
		keywords:   keywords,
	}
}

// Resolve returns the first parameter, in configuration order, whose card
// matches cardName (trimmed, case-insensitive) and whose motive contains one
// of the intent's keywords.
//
// When several parameters match, the first one wins. That order is whatever
// the configuration source returned.
func (r *Resolver) Resolve(cardName string, intent Intent) (model.AccountingParameter, bool) {
	card := normalizeCard(cardName)
	for _, p := range r.parameters {
		if normalizeCard(p.CardName) != card {
			continue
		}
		if r.keywords.Matches(intent, p.Motive) {
			return p, true
		}
	}
	return model.AccountingParameter{}, false
}

// ForCard returns all parameters configured for a card, in order.
func (r *Resolver) ForCard(cardName string) []model.AccountingParameter {
	card := normalizeCard(cardName)
	var result []model.AccountingParameter
	for _, p := range r.parameters {
		if normalizeCard(p.CardName) == card {
			result = append(result, p)
		}
	}
	return result
}

// Keywords returns the keyword table in use.
func (r *Resolver) Keywords() KeywordTable {
	return r.keywords
}

func normalizeCard(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
