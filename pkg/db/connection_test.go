package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	errAbort := errors.New("abort")

	err := conn.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO cards (name, subaccount) VALUES ('Visa', '1')`); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("Transaction() error = %v, want errAbort", err)
	}

	var n int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("cards after rollback = %d, want 0", n)
	}

	err = conn.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO cards (name, subaccount) VALUES ('Visa', '1')`)
		return err
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("cards after commit = %d, want 1", n)
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/data/recon.db")
	for _, want := range []string{"file:/data/recon.db?", "_journal_mode=WAL", "_foreign_keys=on", "_busy_timeout=5000"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn() = %q, missing %q", got, want)
		}
	}
}
