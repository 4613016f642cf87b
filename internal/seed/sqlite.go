package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"finboard/internal/core"
	"finboard/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads the seed from a SQLite database laid out by the
// embedded migrations.
type SQLiteSource struct {
	path   string
	logger *slog.Logger
}

func NewSQLiteSource(path string, logger *slog.Logger) *SQLiteSource {
	return &SQLiteSource{path: path, logger: log.WithComponent(logger, log.ComponentSeed)}
}

func (s *SQLiteSource) open() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Load reads every table concurrently and validates the result.
func (s *SQLiteSource) Load(ctx context.Context) (core.Dataset, error) {
	db, err := s.open()
	if err != nil {
		return core.Dataset{}, err
	}
	defer db.Close()

	var d core.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Balance, err = readBalance(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		d.Transactions, err = readTransactions(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		d.Pots, err = readPots(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		d.Budgets, err = readBudgets(gctx, db)
		return err
	})
	g.Go(func() (err error) {
		d.Bills, err = readBills(gctx, db)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dataset{}, err
	}
	if err := d.Validate(); err != nil {
		return core.Dataset{}, err
	}

	s.logger.InfoContext(ctx, "Seed loaded from SQLite",
		log.FieldPath, s.path,
		log.FieldTransactions, len(d.Transactions),
		log.FieldPots, len(d.Pots),
		log.FieldBudgets, len(d.Budgets),
		log.FieldBills, len(d.Bills))
	return d, nil
}

// Import replaces the seed tables with d in one transaction. It prepares a
// database for later Load calls.
func (s *SQLiteSource) Import(ctx context.Context, d core.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"balance", "transactions", "pots", "budgets", "bills"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO balance (id, current, income, expenses) VALUES (1, ?, ?, ?)`,
		d.Balance.Current, d.Balance.Income, d.Balance.Expenses); err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}
	for i, t := range d.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (position, name, category, amount, date) VALUES (?, ?, ?, ?, ?)`,
			i, t.Name, string(t.Category), t.Amount, t.Date.String()); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}
	for i, p := range d.Pots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pots (position, id, name, total, target, theme) VALUES (?, ?, ?, ?, ?, ?)`,
			i, p.ID, p.Name, p.Total, p.Target, p.Theme); err != nil {
			return fmt.Errorf("insert pot %d: %w", p.ID, err)
		}
	}
	for i, b := range d.Budgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (position, category, maximum, theme) VALUES (?, ?, ?, ?)`,
			i, b.Category, b.Maximum, b.Theme); err != nil {
			return fmt.Errorf("insert budget %d: %w", i, err)
		}
	}
	for i, b := range d.Bills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bills (position, id, title, due_date, amount, paid) VALUES (?, ?, ?, ?, ?, ?)`,
			i, b.ID, b.Title, b.DueDate.String(), b.Amount, b.Paid); err != nil {
			return fmt.Errorf("insert bill %d: %w", b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	s.logger.InfoContext(ctx, "Seed imported into SQLite", log.FieldPath, s.path)
	return nil
}

func readBalance(ctx context.Context, db *sql.DB) (core.BalanceSummary, error) {
	var b core.BalanceSummary
	err := db.QueryRowContext(ctx, `SELECT current, income, expenses FROM balance WHERE id = 1`).
		Scan(&b.Current, &b.Income, &b.Expenses)
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("%w: balance row missing", core.ErrInvalidSeed)
	}
	if err != nil {
		return b, fmt.Errorf("read balance: %w", err)
	}
	return b, nil
}

func readTransactions(ctx context.Context, db *sql.DB) ([]core.Transaction, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, category, amount, date FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t        core.Transaction
			category string
			date     string
		)
		if err := rows.Scan(&t.Name, &category, &t.Amount, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Category = core.Category(category)
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("%w: transaction %q: %w", core.ErrInvalidSeed, t.Name, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func readPots(ctx context.Context, db *sql.DB) ([]core.Pot, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, total, target, theme FROM pots ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read pots: %w", err)
	}
	defer rows.Close()

	out := []core.Pot{}
	for rows.Next() {
		var p core.Pot
		if err := rows.Scan(&p.ID, &p.Name, &p.Total, &p.Target, &p.Theme); err != nil {
			return nil, fmt.Errorf("scan pot: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func readBudgets(ctx context.Context, db *sql.DB) ([]core.Budget, error) {
	rows, err := db.QueryContext(ctx, `SELECT category, maximum, theme FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.Category, &b.Maximum, &b.Theme); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func readBills(ctx context.Context, db *sql.DB) ([]core.Bill, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title, due_date, amount, paid FROM bills ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		var (
			b   core.Bill
			due string
		)
		if err := rows.Scan(&b.ID, &b.Title, &due, &b.Amount, &b.Paid); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if b.DueDate, err = core.ParseDate(due); err != nil {
			return nil, fmt.Errorf("%w: bill %q: %w", core.ErrInvalidSeed, b.Title, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

var _ Source = (*SQLiteSource)(nil)
