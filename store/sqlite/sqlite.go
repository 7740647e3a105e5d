/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements ledger.Store, ledger.SequenceAllocator, and taxes.Store using
  SQLite. The tables mirror the document shapes: line items and the payment
  back-reference list are stored as JSON columns, monetary values as decimal
  strings so no binary float ever touches an amount.

INTERFACES IMPLEMENTED:
  ledger.Store:             invoice/payment/quote persistence
  ledger.SequenceAllocator: settings-backed monotonic counters
  taxes.Store:              tax rates with the atomic SetDefaultTax

COMPOUND WRITES:
  ApplyPaymentDelta (credit increment + status + payment list + version)
  runs inside a SQL transaction so it behaves like the single-document
  update it stands in for. For attaching writes it re-checks the credit
  ceiling and refuses a positive delta that would exceed total - discount,
  even though the engine's per-invoice lock should make that unreachable.
  Amendment deltas are exempt: they are validated against the payment's
  denormalized snapshot, which may lawfully lag the invoice row.

KEY TABLES:
  invoices:  document rows with items/payment-id JSON columns
  payments:  settlement rows with the denormalized invoice snapshot
  quotes:    totals-only documents, no payment relationship
  taxes:     percentage rates; at most one is_default=1
  settings:  monotonic counters (last_invoice_number, last_quote_number)

CONCURRENCY:
  Opened in WAL mode with a busy timeout; writes are additionally
  serialized with a process-local mutex so concurrent ledger operations
  never see SQLITE_BUSY.

USAGE:
  st, err := sqlite.New("./data/erp.db")
  if err != nil { ... }
  defer st.Close()
  engine := ledger.NewEngine(st, st, logger)

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dasunhq/idurar-erp-crm/ledger"
	"github.com/dasunhq/idurar-erp-crm/money"
	"github.com/dasunhq/idurar-erp-crm/taxes"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		year INTEGER NOT NULL,
		items_json TEXT NOT NULL,
		tax_rate TEXT NOT NULL,
		sub_total TEXT NOT NULL,
		tax_total TEXT NOT NULL,
		total TEXT NOT NULL,
		discount TEXT NOT NULL,
		credit TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_ids_json TEXT NOT NULL,
		version INTEGER NOT NULL,
		note TEXT,
		removed INTEGER NOT NULL DEFAULT 0,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_live
		ON invoices(id) WHERE removed = 0;
	CREATE INDEX IF NOT EXISTS idx_invoices_number
		ON invoices(number);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL,
		snap_total TEXT NOT NULL,
		snap_discount TEXT NOT NULL,
		snap_credit TEXT NOT NULL,
		snap_version INTEGER NOT NULL,
		amount TEXT NOT NULL,
		number TEXT,
		date TEXT,
		mode TEXT,
		ref TEXT,
		description TEXT,
		removed INTEGER NOT NULL DEFAULT 0,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_invoice
		ON payments(invoice_id) WHERE removed = 0;

	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		year INTEGER NOT NULL,
		items_json TEXT NOT NULL,
		tax_rate TEXT NOT NULL,
		sub_total TEXT NOT NULL,
		tax_total TEXT NOT NULL,
		total TEXT NOT NULL,
		discount TEXT NOT NULL,
		note TEXT,
		removed INTEGER NOT NULL DEFAULT 0,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS taxes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rate TEXT NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INVOICES
// =============================================================================

const invoiceColumns = `id, number, year, items_json, tax_rate, sub_total, tax_total,
	total, discount, credit, payment_status, payment_ids_json, version, note,
	removed, created_by, created_at, updated_at`

func (s *Store) GetInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND removed = 0`, id)
	return scanInvoice(row)
}

func (s *Store) InsertInvoice(ctx context.Context, inv *ledger.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := marshalItems(inv.Items)
	if err != nil {
		return err
	}
	paymentIDs, err := json.Marshal(inv.PaymentIDs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Number, inv.Year, items,
		inv.TaxRate.String(), inv.SubTotal.String(), inv.TaxTotal.String(),
		inv.Total.String(), inv.Discount.String(), inv.Credit.String(),
		string(inv.PaymentStatus), string(paymentIDs), inv.Version, inv.Note,
		boolInt(inv.Removed), inv.CreatedBy,
		inv.CreatedAt.Format(time.RFC3339Nano), inv.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

// UpdateInvoice replaces the stored document, bumping Version and
// reflecting the new version back onto the caller's document.
func (s *Store) UpdateInvoice(ctx context.Context, inv *ledger.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := marshalItems(inv.Items)
	if err != nil {
		return err
	}
	paymentIDs, err := json.Marshal(inv.PaymentIDs)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var version int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM invoices WHERE id = ? AND removed = 0`, inv.ID).
			Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrNotFound
		}
		if err != nil {
			return err
		}

		inv.Version = version + 1
		_, err = tx.ExecContext(ctx, `
			UPDATE invoices SET
				number = ?, year = ?, items_json = ?, tax_rate = ?,
				sub_total = ?, tax_total = ?, total = ?, discount = ?,
				credit = ?, payment_status = ?, payment_ids_json = ?,
				version = ?, note = ?, updated_at = ?
			WHERE id = ? AND removed = 0`,
			inv.Number, inv.Year, items, inv.TaxRate.String(),
			inv.SubTotal.String(), inv.TaxTotal.String(), inv.Total.String(),
			inv.Discount.String(), inv.Credit.String(), string(inv.PaymentStatus),
			string(paymentIDs), inv.Version, inv.Note,
			inv.UpdatedAt.Format(time.RFC3339Nano), inv.ID)
		return err
	})
}

// ApplyPaymentDelta performs the compound invoice update for one payment
// mutation inside a SQL transaction: credit += delta, status set, payment
// id attached or detached, version bumped.
func (s *Store) ApplyPaymentDelta(ctx context.Context, invoiceID, paymentID string, delta money.Amount, status ledger.Status, attach ledger.Attach) (*ledger.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out *ledger.Invoice
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND removed = 0`, invoiceID)
		inv, err := scanInvoice(row)
		if err != nil {
			return err
		}

		newCredit := inv.Credit.Add(delta)
		// Backstop for the create path only: under the per-invoice lock the
		// invoice read here matches the one the engine validated, so a
		// breach means a racing writer. Amendments (AttachNone) validate
		// against the payment's snapshot, which may lawfully lag this row
		// after an invoice edit; re-checking them here would reject writes
		// the engine already committed the payment side of.
		if attach == ledger.AttachAdd && delta.IsPositive() && newCredit.GreaterThan(inv.Net()) {
			return ledger.ErrOverpayment
		}

		inv.Credit = newCredit
		inv.PaymentStatus = status
		inv.Version++
		inv.UpdatedAt = time.Now().UTC()

		switch attach {
		case ledger.AttachAdd:
			inv.PaymentIDs = append(inv.PaymentIDs, paymentID)
		case ledger.AttachRemove:
			ids := inv.PaymentIDs[:0]
			for _, id := range inv.PaymentIDs {
				if id != paymentID {
					ids = append(ids, id)
				}
			}
			inv.PaymentIDs = ids
		}

		paymentIDs, err := json.Marshal(inv.PaymentIDs)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE invoices SET credit = ?, payment_status = ?,
				payment_ids_json = ?, version = ?, updated_at = ?
			WHERE id = ? AND removed = 0`,
			inv.Credit.String(), string(inv.PaymentStatus), string(paymentIDs),
			inv.Version, inv.UpdatedAt.Format(time.RFC3339Nano), inv.ID)
		if err != nil {
			return err
		}

		out = inv
		return nil
	})
	return out, err
}

// SoftDeleteInvoice marks the invoice removed and cascade-soft-deletes its
// payments in the same transaction.
func (s *Store) SoftDeleteInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out *ledger.Invoice
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND removed = 0`, id)
		inv, err := scanInvoice(row)
		if err != nil {
			return err
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.ExecContext(ctx,
			`UPDATE invoices SET removed = 1, version = version + 1, updated_at = ? WHERE id = ?`,
			now, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET removed = 1, updated_at = ? WHERE invoice_id = ?`,
			now, id); err != nil {
			return err
		}

		inv.Removed = true
		inv.Version++
		out = inv
		return nil
	})
	return out, err
}

// =============================================================================
// PAYMENTS
// =============================================================================

const paymentColumns = `id, invoice_id, snap_total, snap_discount, snap_credit,
	snap_version, amount, number, date, mode, ref, description, removed,
	created_by, created_at, updated_at`

func (s *Store) GetPayment(ctx context.Context, id string) (*ledger.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ? AND removed = 0`, id)
	return scanPayment(row)
}

func (s *Store) InsertPayment(ctx context.Context, p *ledger.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Invoice.InvoiceID,
		p.Invoice.Total.String(), p.Invoice.Discount.String(),
		p.Invoice.Credit.String(), p.Invoice.Version,
		p.Amount.String(), p.Number, p.Date.Format(time.RFC3339Nano),
		p.Mode, p.Ref, p.Description, boolInt(p.Removed), p.CreatedBy,
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *Store) UpdatePayment(ctx context.Context, p *ledger.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments SET
			snap_total = ?, snap_discount = ?, snap_credit = ?, snap_version = ?,
			amount = ?, number = ?, date = ?, mode = ?, ref = ?,
			description = ?, updated_at = ?
		WHERE id = ? AND removed = 0`,
		p.Invoice.Total.String(), p.Invoice.Discount.String(),
		p.Invoice.Credit.String(), p.Invoice.Version,
		p.Amount.String(), p.Number, p.Date.Format(time.RFC3339Nano),
		p.Mode, p.Ref, p.Description,
		p.UpdatedAt.Format(time.RFC3339Nano), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SoftDeletePayment(ctx context.Context, id string) (*ledger.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out *ledger.Payment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE id = ? AND removed = 0`, id)
		p, err := scanPayment(row)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE payments SET removed = 1, updated_at = ? WHERE id = ?`,
			now.Format(time.RFC3339Nano), id); err != nil {
			return err
		}

		p.Removed = true
		p.UpdatedAt = now
		out = p
		return nil
	})
	return out, err
}

// =============================================================================
// QUOTES
// =============================================================================

func (s *Store) InsertQuote(ctx context.Context, q *ledger.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := marshalItems(q.Items)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, number, year, items_json, tax_rate, sub_total,
			tax_total, total, discount, note, removed, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Number, q.Year, items, q.TaxRate.String(),
		q.SubTotal.String(), q.TaxTotal.String(), q.Total.String(),
		q.Discount.String(), q.Note, boolInt(q.Removed), q.CreatedBy,
		q.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// =============================================================================
// SEQUENCE ALLOCATOR - settings-backed monotonic counters
// =============================================================================

// Next atomically increments and returns the named counter.
func (s *Store) Next(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, 0)
			 ON CONFLICT(key) DO NOTHING`, key); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE settings SET value = value + 1 WHERE key = ?`, key); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	})
	return value, err
}

// =============================================================================
// TAXES
// =============================================================================

const taxColumns = `id, name, rate, is_default, enabled, created_at, updated_at`

func (s *Store) GetTax(ctx context.Context, id string) (*taxes.Tax, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taxColumns+` FROM taxes WHERE id = ?`, id)
	t, err := scanTax(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, taxes.ErrNotFound
	}
	return t, err
}

func (s *Store) ListTaxes(ctx context.Context) ([]taxes.Tax, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taxColumns+` FROM taxes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []taxes.Tax
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) InsertTax(ctx context.Context, t *taxes.Tax) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO taxes (`+taxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Rate.String(), boolInt(t.IsDefault), boolInt(t.Enabled),
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *Store) UpdateTax(ctx context.Context, t *taxes.Tax) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE taxes SET name = ?, rate = ?, is_default = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Rate.String(), boolInt(t.IsDefault), boolInt(t.Enabled),
		t.UpdatedAt.Format(time.RFC3339Nano), t.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return taxes.ErrNotFound
	}
	return nil
}

// SetDefaultTax clears every default flag and sets one, atomically.
func (s *Store) SetDefaultTax(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE taxes SET is_default = 0 WHERE id != ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE taxes SET is_default = 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return taxes.ErrNotFound
		}
		return nil
	})
}

// =============================================================================
// INTERNAL - scanning and serialization
// =============================================================================

// itemRecord is the JSON shape of a line item; amounts as decimal strings.
type itemRecord struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

func marshalItems(items []ledger.LineItem) (string, error) {
	records := make([]itemRecord, len(items))
	for i, it := range items {
		records[i] = itemRecord{
			Name:     it.Name,
			Quantity: it.Quantity.String(),
			Price:    it.Price.String(),
			Total:    it.Total.String(),
		}
	}
	b, err := json.Marshal(records)
	return string(b), err
}

func unmarshalItems(raw string) ([]ledger.LineItem, error) {
	var records []itemRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	items := make([]ledger.LineItem, len(records))
	for i, r := range records {
		q, err := money.FromString(r.Quantity)
		if err != nil {
			return nil, err
		}
		p, err := money.FromString(r.Price)
		if err != nil {
			return nil, err
		}
		t, err := money.FromString(r.Total)
		if err != nil {
			return nil, err
		}
		items[i] = ledger.LineItem{Name: r.Name, Quantity: q, Price: p, Total: t}
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*ledger.Invoice, error) {
	var (
		inv                                                  ledger.Invoice
		itemsJSON, paymentIDsJSON                            string
		taxRate, subTotal, taxTotal, total, discount, credit string
		status, createdAt, updatedAt                         string
		removed                                              int
		note, createdBy                                      sql.NullString
	)

	err := row.Scan(&inv.ID, &inv.Number, &inv.Year, &itemsJSON, &taxRate,
		&subTotal, &taxTotal, &total, &discount, &credit, &status,
		&paymentIDsJSON, &inv.Version, &note, &removed, &createdBy,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if inv.Items, err = unmarshalItems(itemsJSON); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(paymentIDsJSON), &inv.PaymentIDs); err != nil {
		return nil, err
	}
	if inv.TaxRate, err = money.FromString(taxRate); err != nil {
		return nil, err
	}
	if inv.SubTotal, err = money.FromString(subTotal); err != nil {
		return nil, err
	}
	if inv.TaxTotal, err = money.FromString(taxTotal); err != nil {
		return nil, err
	}
	if inv.Total, err = money.FromString(total); err != nil {
		return nil, err
	}
	if inv.Discount, err = money.FromString(discount); err != nil {
		return nil, err
	}
	if inv.Credit, err = money.FromString(credit); err != nil {
		return nil, err
	}

	inv.PaymentStatus = ledger.Status(status)
	inv.Removed = removed != 0
	inv.Note = note.String
	inv.CreatedBy = createdBy.String
	if inv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if inv.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanPayment(row rowScanner) (*ledger.Payment, error) {
	var (
		p                                        ledger.Payment
		snapTotal, snapDiscount, snapCredit      string
		amount, createdAt, updatedAt             string
		date, number, mode, ref, desc, createdBy sql.NullString
		removed                                  int
	)

	err := row.Scan(&p.ID, &p.Invoice.InvoiceID, &snapTotal, &snapDiscount,
		&snapCredit, &p.Invoice.Version, &amount, &number, &date, &mode,
		&ref, &desc, &removed, &createdBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Invoice.Total, err = money.FromString(snapTotal); err != nil {
		return nil, err
	}
	if p.Invoice.Discount, err = money.FromString(snapDiscount); err != nil {
		return nil, err
	}
	if p.Invoice.Credit, err = money.FromString(snapCredit); err != nil {
		return nil, err
	}
	if p.Amount, err = money.FromString(amount); err != nil {
		return nil, err
	}

	p.Number = number.String
	p.Mode = mode.String
	p.Ref = ref.String
	p.Description = desc.String
	p.CreatedBy = createdBy.String
	p.Removed = removed != 0
	if date.Valid && date.String != "" {
		if p.Date, err = time.Parse(time.RFC3339Nano, date.String); err != nil {
			return nil, err
		}
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanTax(row rowScanner) (*taxes.Tax, error) {
	var (
		t                    taxes.Tax
		rate                 string
		isDefault, enabled   int
		createdAt, updatedAt string
	)

	err := row.Scan(&t.ID, &t.Name, &rate, &isDefault, &enabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if t.Rate, err = money.FromString(rate); err != nil {
		return nil, err
	}
	t.IsDefault = isDefault != 0
	t.Enabled = enabled != 0
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
