// Package extraction loads the structured documents produced by the statement
// and allocation-report extractors.
package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// ErrDuplicateID is returned when a document lists the same id twice.
var ErrDuplicateID = errors.New("duplicate id")

// ErrMissingID is returned when an item has a blank id.
var ErrMissingID = errors.New("missing id")

type transactionDocument struct {
	Transactions []model.Transaction `json:"transactions"`
}

type allocationDocument struct {
	Allocations []model.Allocation `json:"allocations"`
}

// DecodeTransactions decodes a {"transactions":[...]} document.
func DecodeTransactions(r io.Reader) ([]model.Transaction, error) {
	var doc transactionDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	if err := ValidateTransactions(doc.Transactions); err != nil {
		return nil, err
	}

	return doc.Transactions, nil
}

// ValidateTransactions checks that every transaction has a unique, non-blank id.
func ValidateTransactions(txs []model.Transaction) error {
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return checkIDs("transaction", ids)
}

// DecodeAllocations decodes an {"allocations":[...]} document.
// Amounts are normalized to their absolute value.
func DecodeAllocations(r io.Reader) ([]model.Allocation, error) {
	var doc allocationDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode allocations: %w", err)
	}

	if err := NormalizeAllocations(doc.Allocations); err != nil {
		return nil, err
	}

	return doc.Allocations, nil
}

// NormalizeAllocations replaces every amount with its absolute value in place
// and checks that every allocation has a unique, non-blank id.
func NormalizeAllocations(allocs []model.Allocation) error {
	ids := make([]string, len(allocs))
	for i := range allocs {
		allocs[i].Amount = allocs[i].Amount.Abs()
		ids[i] = allocs[i].ID
	}
	return checkIDs("allocation", ids)
}

// LoadTransactions reads a transaction document from a file.
func LoadTransactions(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transactions file: %w", err)
	}
	defer f.Close()

	return DecodeTransactions(f)
}

// LoadAllocations reads an allocation document from a file.
func LoadAllocations(path string) ([]model.Allocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open allocations file: %w", err)
	}
	defer f.Close()

	return DecodeAllocations(f)
}

func checkIDs(kind string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%s at position %d: %w", kind, i, ErrMissingID)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%s %q: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}
