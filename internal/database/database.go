// Package database persists transactions, categories, and vendor rules in
// SQLite. Amounts are stored as decimal strings to avoid float drift.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	keywords_en TEXT NOT NULL DEFAULT '[]',
	keywords_zh TEXT NOT NULL DEFAULT '[]',
	icon TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	is_system INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS vendor_rules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vendor TEXT NOT NULL UNIQUE COLLATE NOCASE,
	category_id INTEGER NOT NULL REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	source TEXT NOT NULL,
	raw_text TEXT NOT NULL,
	amount TEXT NOT NULL,
	items TEXT NOT NULL DEFAULT '[]',
	category_id INTEGER REFERENCES categories(id),
	vendor TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);
`

// DB wraps the SQLite connection with higher-level operations.
type DB struct {
	conn   *sql.DB
	logger logging.Logger
}

// Open opens (and creates if missing) the SQLite database at path and
// applies the schema.
func Open(path string, logger logging.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database at %s: %w", path, err)
	}

	// SQLite handles a single writer; one connection sidesteps lock errors.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error applying schema: %w", err)
	}

	logger.WithField("path", path).Debug("Database opened")
	return &DB{conn: conn, logger: logger}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// SeedCategories inserts categories that are not present yet. Existing rows
// keep their identifiers so vendor rules stay valid.
func (d *DB) SeedCategories(ctx context.Context, categories []models.Category) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		en, err := json.Marshal(c.KeywordsEN)
		if err != nil {
			return fmt.Errorf("error encoding keywords: %w", err)
		}
		zh, err := json.Marshal(c.KeywordsZH)
		if err != nil {
			return fmt.Errorf("error encoding keywords: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories (name, keywords_en, keywords_zh, icon, color, is_system)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
			   keywords_en = excluded.keywords_en,
			   keywords_zh = excluded.keywords_zh,
			   icon = excluded.icon,
			   color = excluded.color`,
			c.Name, string(en), string(zh), c.Icon, c.Color, boolToInt(c.IsSystem))
		if err != nil {
			return fmt.Errorf("error seeding category %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// ListCategories returns all categories ordered by identifier.
func (d *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, name, keywords_en, keywords_zh, icon, color, is_system
		 FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var en, zh string
		var isSystem int
		if err := rows.Scan(&c.ID, &c.Name, &en, &zh, &c.Icon, &c.Color, &isSystem); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		if err := json.Unmarshal([]byte(en), &c.KeywordsEN); err != nil {
			return nil, fmt.Errorf("error decoding keywords for %q: %w", c.Name, err)
		}
		if err := json.Unmarshal([]byte(zh), &c.KeywordsZH); err != nil {
			return nil, fmt.Errorf("error decoding keywords for %q: %w", c.Name, err)
		}
		c.IsSystem = isSystem != 0
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindCategoryByName returns the category with the given name, or nil.
func (d *DB) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	categories, err := d.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i], nil
		}
	}
	return nil, nil
}

// ListVendorRules returns all vendor rules.
func (d *DB) ListVendorRules(ctx context.Context) ([]models.VendorRule, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, vendor, category_id FROM vendor_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying vendor rules: %w", err)
	}
	defer rows.Close()

	var rules []models.VendorRule
	for rows.Next() {
		var r models.VendorRule
		if err := rows.Scan(&r.ID, &r.Vendor, &r.CategoryID); err != nil {
			return nil, fmt.Errorf("error scanning vendor rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UpsertVendorRule inserts a rule or repoints an existing vendor at a new
// category. Vendor matching is case-insensitive.
func (d *DB) UpsertVendorRule(ctx context.Context, rule models.VendorRule) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO vendor_rules (vendor, category_id) VALUES (?, ?)
		 ON CONFLICT(vendor) DO UPDATE SET category_id = excluded.category_id`,
		rule.Vendor, rule.CategoryID)
	if err != nil {
		return fmt.Errorf("error upserting vendor rule for %q: %w", rule.Vendor, err)
	}
	return nil
}

// InsertTransaction stores a transaction.
func (d *DB) InsertTransaction(ctx context.Context, t models.Transaction) error {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("error encoding items: %w", err)
	}
	var categoryID interface{}
	if t.CategoryID != nil {
		categoryID = *t.CategoryID
	}
	_, err = d.conn.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, timestamp, source, raw_text, amount, items, category_id, vendor, note, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Timestamp.UTC().Format(time.RFC3339), t.Source, t.RawText,
		t.Amount.String(), items, categoryID, t.Vendor, t.Note, t.ImageURL)
	if err != nil {
		return fmt.Errorf("error inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

// GetTransaction fetches a single transaction by identifier. Returns
// sql.ErrNoRows when it does not exist.
func (d *DB) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	row := d.conn.QueryRowContext(ctx,
		`SELECT id, timestamp, source, raw_text, amount, items, category_id, vendor, note, image_url
		 FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// ListRecent returns the most recent transactions, newest first.
func (d *DB) ListRecent(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, timestamp, source, raw_text, amount, items, category_id, vendor, note, image_url
		 FROM transactions ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// ListAll returns every transaction, newest first. Used by the CSV export.
func (d *DB) ListAll(ctx context.Context) ([]models.Transaction, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, timestamp, source, raw_text, amount, items, category_id, vendor, note, image_url
		 FROM transactions ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// UpdateTransactionCategory repoints a transaction at a new category.
// Returns sql.ErrNoRows when the transaction does not exist.
func (d *DB) UpdateTransactionCategory(ctx context.Context, id string, categoryID int64) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return fmt.Errorf("error updating transaction %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SumSince returns the total amount of transactions at or after the given
// time.
func (d *DB) SumSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT amount FROM transactions WHERE timestamp >= ?`,
		since.UTC().Format(time.RFC3339))
	if err != nil {
		return decimal.Zero, fmt.Errorf("error querying amounts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("error scanning amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("error parsing stored amount %q: %w", raw, err)
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// RollupSince aggregates totals per category for transactions at or after
// the given time. Transactions without a category are grouped under
// Uncategorized.
func (d *DB) RollupSince(ctx context.Context, since time.Time) ([]models.CategoryRollup, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT t.category_id, COALESCE(c.name, ?), t.amount
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.timestamp >= ?`,
		models.CategoryNameUncategorized, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("error querying rollup: %w", err)
	}
	defer rows.Close()

	buckets := make(map[string]*models.CategoryRollup)
	for rows.Next() {
		var categoryID sql.NullInt64
		var name, raw string
		if err := rows.Scan(&categoryID, &name, &raw); err != nil {
			return nil, fmt.Errorf("error scanning rollup row: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("error parsing stored amount %q: %w", raw, err)
		}
		b, ok := buckets[name]
		if !ok {
			b = &models.CategoryRollup{CategoryName: name}
			if categoryID.Valid {
				id := categoryID.Int64
				b.CategoryID = &id
			}
			buckets[name] = b
		}
		b.Total = b.Total.Add(amount)
		b.Count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rollups := make([]models.CategoryRollup, 0, len(buckets))
	for _, b := range buckets {
		rollups = append(rollups, *b)
	}
	// Largest spend first.
	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].Total.GreaterThan(rollups[j].Total)
	})
	return rollups, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	var ts, source, amount, items string
	var categoryID sql.NullInt64
	err := row.Scan(&t.ID, &ts, &source, &t.RawText, &amount, &items,
		&categoryID, &t.Vendor, &t.Note, &t.ImageURL)
	if err != nil {
		return t, err
	}
	t.Timestamp, err = time.Parse(time.RFC3339, ts)
	if err != nil {
		return t, fmt.Errorf("error parsing stored timestamp %q: %w", ts, err)
	}
	t.Source = source
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return t, fmt.Errorf("error parsing stored amount %q: %w", amount, err)
	}
	if err := json.Unmarshal([]byte(items), &t.Items); err != nil {
		return t, fmt.Errorf("error decoding items: %w", err)
	}
	if categoryID.Valid {
		id := categoryID.Int64
		t.CategoryID = &id
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
