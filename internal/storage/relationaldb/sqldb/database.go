// Package sqldb implements the trade index on database/sql, with
// sqlite for standalone nodes and PostgreSQL for shared deployments.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"      // PostgreSQL driver
	_ "modernc.org/sqlite"     // sqlite driver, no cgo

	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	card       TEXT   NOT NULL,
	action     TEXT   NOT NULL,
	actor      TEXT   NOT NULL,
	price      BIGINT NOT NULL,
	close_time BIGINT NOT NULL,
	ledger_seq BIGINT NOT NULL,
	txn_index  BIGINT NOT NULL,
	tx_hash    TEXT   NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_card ON trades (card, close_time, ledger_seq, txn_index);
`

// SQLDatabase implements relationaldb.Database on database/sql.
type SQLDatabase struct {
	db     *sql.DB
	config relationaldb.Config
}

// NewDatabase creates a trade index database from config. The
// connection is established by Open.
func NewDatabase(config relationaldb.Config) (*SQLDatabase, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SQLDatabase{config: config}, nil
}

// Open opens the database connection and initializes the schema.
func (d *SQLDatabase) Open(ctx context.Context) error {
	db, err := sql.Open(d.config.Driver, d.config.ConnectionString)
	if err != nil {
		return fmt.Errorf("open trade index: %w", err)
	}

	db.SetMaxOpenConns(d.config.MaxOpenConns)
	db.SetMaxIdleConns(d.config.MaxIdleConns)
	db.SetConnMaxLifetime(d.config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, d.config.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping trade index: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("initialize trade index schema: %w", err)
	}

	d.db = db
	return nil
}

// InsertTrade records one trade row.
func (d *SQLDatabase) InsertTrade(ctx context.Context, row relationaldb.TradeRow) error {
	query := d.rebind(`INSERT INTO trades (card, action, actor, price, close_time, ledger_seq, txn_index, tx_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := d.db.ExecContext(ctx, query,
		row.Card, row.Action, row.Actor, int64(row.Price), row.CloseTime, int64(row.LedgerSeq), int64(row.TxnIndex), row.TxHash)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// CardTrades returns trades for a card, oldest first.
func (d *SQLDatabase) CardTrades(ctx context.Context, card string, limit int) ([]relationaldb.TradeRow, error) {
	query := `SELECT card, action, actor, price, close_time, ledger_seq, txn_index, tx_hash
		FROM trades WHERE card = ? ORDER BY close_time, ledger_seq, txn_index`
	args := []any{card}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []relationaldb.TradeRow
	for rows.Next() {
		var row relationaldb.TradeRow
		var price, ledgerSeq, txnIndex int64
		if err := rows.Scan(&row.Card, &row.Action, &row.Actor, &price, &row.CloseTime, &ledgerSeq, &txnIndex, &row.TxHash); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		row.Price = uint64(price)
		row.LedgerSeq = uint32(ledgerSeq)
		row.TxnIndex = uint32(txnIndex)
		trades = append(trades, row)
	}
	return trades, rows.Err()
}

// TradeCount returns the number of recorded trades for a card.
func (d *SQLDatabase) TradeCount(ctx context.Context, card string) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx, d.rebind(`SELECT COUNT(*) FROM trades WHERE card = ?`), card).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (d *SQLDatabase) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// rebind rewrites ? placeholders to $n for the postgres driver.
func (d *SQLDatabase) rebind(query string) string {
	if d.config.Driver != relationaldb.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
