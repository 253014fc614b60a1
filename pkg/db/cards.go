package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// CardStore manages registered cards.
type CardStore struct {
	conn *Connection
}

// NewCardStore creates a new CardStore instance.
func NewCardStore(conn *Connection) *CardStore {
	return &CardStore{conn: conn}
}

// SaveCards inserts or updates cards in a single transaction.
func (s *CardStore) SaveCards(ctx context.Context, cards []model.Card) error {
	query := `
		INSERT INTO cards (name, subaccount)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET subaccount = excluded.subaccount
	`

	return s.conn.Transaction(ctx, func(tx *sql.Tx) error {
		for _, card := range cards {
			if _, err := tx.ExecContext(ctx, query, card.Name, card.Subaccount); err != nil {
				return fmt.Errorf("failed to save card %q: %w", card.Name, err)
			}
		}
		return nil
	})
}

// ListCards returns all cards ordered by name.
func (s *CardStore) ListCards(ctx context.Context) ([]model.Card, error) {
	rows, err := s.conn.Query(ctx, `SELECT name, subaccount FROM cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var card model.Card
		if err := rows.Scan(&card.Name, &card.Subaccount); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// GetCard retrieves a card by name. It returns nil when the card is unknown.
func (s *CardStore) GetCard(ctx context.Context, name string) (*model.Card, error) {
	var card model.Card
	err := s.conn.QueryRow(ctx, `SELECT name, subaccount FROM cards WHERE name = ?`, name).
		Scan(&card.Name, &card.Subaccount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &card, nil
}
