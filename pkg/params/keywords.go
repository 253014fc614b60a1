package params

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordTable maps each intent to the keywords searched in parameter motives.
type KeywordTable map[Intent][]string

// DefaultKeywords is the built-in keyword table.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		IntentPendingTransaction:   {"pendente"},
		IntentAllocationSettlement: {"presta", "aloca"},
		IntentReturnToCard:         {"devolver"},
		IntentNoteAlreadyPosted:    {"acertar"},
	}
}

// keywordFile is the YAML layout of a keyword override file:
//
//	keywords:
//	  pending-transaction: [pendente]
//	  allocation-settlement: [presta, aloca]
type keywordFile struct {
	Keywords map[string][]string `yaml:"keywords"`
}

// LoadKeywords reads a keyword override file. Intents absent from the file
// keep their default keywords.
func LoadKeywords(path string) (KeywordTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var file keywordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	table := DefaultKeywords()
	for name, keywords := range file.Keywords {
		intent, err := ParseIntent(name)
		if err != nil {
			return nil, err
		}

		var cleaned []string
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				cleaned = append(cleaned, k)
			}
		}
		if len(cleaned) == 0 {
			return nil, fmt.Errorf("intent %s has no keywords", intent)
		}
		table[intent] = cleaned
	}

	return table, nil
}

// Matches reports whether motive contains one of the intent's keywords.
func (t KeywordTable) Matches(intent Intent, motive string) bool {
	lower := strings.ToLower(motive)
	for _, k := range t[intent] {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
