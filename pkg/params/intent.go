// Package params resolves the accounting parameters to use for a card and an
// export intent, and imports parameters and cards from delimited files.
package params

import (
	"fmt"
	"strings"
)

// Intent is the accounting treatment requested for an export.
type Intent string

const (
	IntentPendingTransaction   Intent = "pending-transaction"
	IntentAllocationSettlement Intent = "allocation-settlement"
	IntentReturnToCard         Intent = "return-to-card"
	IntentNoteAlreadyPosted    Intent = "note-already-posted"
)

// Intents lists every intent in a stable order.
var Intents = []Intent{
	IntentPendingTransaction,
	IntentAllocationSettlement,
	IntentReturnToCard,
	IntentNoteAlreadyPosted,
}

// ParseIntent parses an intent name.
func ParseIntent(s string) (Intent, error) {
	normalized := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, intent := range Intents {
		if intent == normalized {
			return intent, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q (expected one of %v)", s, Intents)
}

// FileSuffix returns the suffix used in export file names for the intent.
func (i Intent) FileSuffix() string {
	switch i {
	case IntentPendingTransaction:
		return "pendentes"
	case IntentAllocationSettlement:
		return "prestacao"
	case IntentReturnToCard:
		return "devolver"
	case IntentNoteAlreadyPosted:
		return "acertar"
	}
	return ""
}
