// Package db provides SQLite storage for ignored items, cards, accounting
// parameters and the export audit trail.
package db

import "context"

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Ignored items
-- Transaction/allocation ids excluded from a card's reconciliation for one competency
CREATE TABLE IF NOT EXISTS ignored_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_name TEXT NOT NULL,
    competency TEXT NOT NULL,          -- YYYY-MM
    item_id TEXT NOT NULL,
    ignored_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(card_name, competency, item_id)
);

CREATE INDEX IF NOT EXISTS idx_ignored_items_session
    ON ignored_items(card_name, competency);

-- Registered cards
CREATE TABLE IF NOT EXISTS cards (
    name TEXT PRIMARY KEY,
    subaccount TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Accounting parameters
-- Debit/credit coordinates per card and motive; seq keeps configuration order
CREATE TABLE IF NOT EXISTS accounting_parameters (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    card_name TEXT NOT NULL,
    motive TEXT NOT NULL,
    debit_account TEXT NOT NULL DEFAULT '',
    credit_account TEXT NOT NULL DEFAULT '',
    debit_subaccount TEXT NOT NULL DEFAULT '',
    credit_subaccount TEXT NOT NULL DEFAULT '',
    fund TEXT NOT NULL DEFAULT '',
    debit_department TEXT NOT NULL DEFAULT '',
    credit_department TEXT NOT NULL DEFAULT '',
    debit_restriction TEXT NOT NULL DEFAULT '',
    credit_restriction TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_accounting_parameters_card
    ON accounting_parameters(card_name);

-- Export history
-- Audit trail of generated import files; not consulted to block re-exports
CREATE TABLE IF NOT EXISTS export_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_name TEXT NOT NULL,
    competency TEXT NOT NULL,
    intent TEXT NOT NULL,
    entry_count INTEGER NOT NULL,
    amount_cents INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_export_history_session
    ON export_history(card_name, competency);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(context.Background(), Schema); err != nil {
		return err
	}
	return nil
}
