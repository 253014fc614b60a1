package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// ParameterStore manages accounting parameters.
// Parameters are returned in insertion order, which is the order the
// resolver uses to break ties between motives.
type ParameterStore struct {
	conn *Connection
}

// NewParameterStore creates a new ParameterStore instance.
func NewParameterStore(conn *Connection) *ParameterStore {
	return &ParameterStore{conn: conn}
}

const parameterColumns = `id, card_name, motive, debit_account, credit_account,
	debit_subaccount, credit_subaccount, fund, debit_department, credit_department,
	debit_restriction, credit_restriction`

// SaveParameters inserts parameters in a single transaction.
// A parameter whose id already exists is updated in place and keeps its position.
func (s *ParameterStore) SaveParameters(ctx context.Context, params []model.AccountingParameter) error {
	query := `
		INSERT INTO accounting_parameters (` + parameterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			card_name = excluded.card_name,
			motive = excluded.motive,
			debit_account = excluded.debit_account,
			credit_account = excluded.credit_account,
			debit_subaccount = excluded.debit_subaccount,
			credit_subaccount = excluded.credit_subaccount,
			fund = excluded.fund,
			debit_department = excluded.debit_department,
			credit_department = excluded.credit_department,
			debit_restriction = excluded.debit_restriction,
			credit_restriction = excluded.credit_restriction
	`

	return s.conn.Transaction(ctx, func(tx *sql.Tx) error {
		for _, p := range params {
			_, err := tx.ExecContext(ctx, query,
				p.ID,
				p.CardName,
				p.Motive,
				p.DebitAccount,
				p.CreditAccount,
				p.DebitSubaccount,
				p.CreditSubaccount,
				p.Fund,
				p.DebitDepartment,
				p.CreditDepartment,
				p.DebitRestriction,
				p.CreditRestriction,
			)
			if err != nil {
				return fmt.Errorf("failed to save parameter %q: %w", p.ID, err)
			}
		}
		return nil
	})
}

// ListParameters returns every parameter in configuration order.
func (s *ParameterStore) ListParameters(ctx context.Context) ([]model.AccountingParameter, error) {
	return s.list(ctx, `SELECT `+parameterColumns+` FROM accounting_parameters ORDER BY seq`)
}

// ListParametersByCard returns the parameters of one card in configuration order.
func (s *ParameterStore) ListParametersByCard(ctx context.Context, cardName string) ([]model.AccountingParameter, error) {
	return s.list(ctx, `SELECT `+parameterColumns+` FROM accounting_parameters WHERE card_name = ? ORDER BY seq`, cardName)
}

// DeleteParameter deletes a parameter by id and reports whether it existed.
func (s *ParameterStore) DeleteParameter(ctx context.Context, id string) (bool, error) {
	result, err := s.conn.Exec(ctx, `DELETE FROM accounting_parameters WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete parameter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (s *ParameterStore) list(ctx context.Context, query string, args ...interface{}) ([]model.AccountingParameter, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	defer rows.Close()

	var params []model.AccountingParameter
	for rows.Next() {
		var p model.AccountingParameter
		if err := rows.Scan(
			&p.ID,
			&p.CardName,
			&p.Motive,
			&p.DebitAccount,
			&p.CreditAccount,
			&p.DebitSubaccount,
			&p.CreditSubaccount,
			&p.Fund,
			&p.DebitDepartment,
			&p.CreditDepartment,
			&p.DebitRestriction,
			&p.CreditRestriction,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		params = append(params, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parameters: %w", err)
	}

	return params, nil
}
