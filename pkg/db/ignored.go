package db

import (
	"context"
	"fmt"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// IgnoreStore persists ignored item ids per card and competency.
// It satisfies ignore.Store.
type IgnoreStore struct {
	conn *Connection
}

// NewIgnoreStore creates a new IgnoreStore instance.
func NewIgnoreStore(conn *Connection) *IgnoreStore {
	return &IgnoreStore{conn: conn}
}

// GetIgnoredIDs retrieves the ignored ids of a card for one competency.
func (s *IgnoreStore) GetIgnoredIDs(ctx context.Context, cardName string, competency model.Competency) ([]string, error) {
	query := `
		SELECT item_id FROM ignored_items
		WHERE card_name = ? AND competency = ?
		ORDER BY item_id
	`

	rows, err := s.conn.Query(ctx, query, cardName, competency.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get ignored ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ignored id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ignored ids: %w", err)
	}

	return ids, nil
}

// AddIgnoredID records an ignored id. Adding an id twice is a no-op.
func (s *IgnoreStore) AddIgnoredID(ctx context.Context, cardName string, competency model.Competency, id string) error {
	query := `
		INSERT INTO ignored_items (card_name, competency, item_id)
		VALUES (?, ?, ?)
		ON CONFLICT(card_name, competency, item_id) DO NOTHING
	`

	if _, err := s.conn.Exec(ctx, query, cardName, competency.String(), id); err != nil {
		return fmt.Errorf("failed to add ignored id: %w", err)
	}

	return nil
}

// RemoveIgnoredID deletes an ignored id. Removing an absent id is a no-op.
func (s *IgnoreStore) RemoveIgnoredID(ctx context.Context, cardName string, competency model.Competency, id string) error {
	query := `DELETE FROM ignored_items WHERE card_name = ? AND competency = ? AND item_id = ?`

	if _, err := s.conn.Exec(ctx, query, cardName, competency.String(), id); err != nil {
		return fmt.Errorf("failed to remove ignored id: %w", err)
	}

	return nil
}
