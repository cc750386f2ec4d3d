// Package store upserts finished statements into postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"k8s.io/klog"

	"github.com/cleared-dev/cgdscraper/internal/model"
)

// DefaultTable is the table rows go to unless configured otherwise.
const DefaultTable = "cgd_transactions"

// SQLTransaction is one statement line as stored in postgres.
type SQLTransaction struct {
	bun.BaseModel `bun:"table:cgd_transactions"`
	Key           string          `bun:",pk"`
	Account       string          `bun:",notnull"`
	Date          time.Time       `bun:"type:date,notnull"`
	ValueDate     time.Time       `bun:"type:date,notnull"`
	Description   string          `bun:"type:text"`
	Amount        decimal.Decimal `bun:"type:numeric(14,2),notnull"`
	Balance       decimal.Decimal `bun:"type:numeric(14,2),notnull"`
	Line          int
	UpdatedAt     time.Time
}

// Store writes statements to a postgres table.
type Store struct {
	db    *bun.DB
	table string
}

// New opens a postgres connection pool for dsn. No connection is made
// until the first query.
func New(dsn, table string) (s *Store, err error) {
	// pgdriver.WithDSN panics on a malformed DSN.
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("invalid database url: %v", r)
		}
	}()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return NewWithDB(bun.NewDB(sqldb, pgdialect.New()), table), nil
}

// NewWithDB wraps an existing bun database.
func NewWithDB(db *bun.DB, table string) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{db: db, table: table}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.createTableQuery().Exec(ctx); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

// Save creates the table if needed and upserts every transaction of stmt
// by key. It returns the number of rows written.
func (s *Store) Save(ctx context.Context, stmt *model.Statement) (int, error) {
	if !stmt.Finished {
		return 0, fmt.Errorf("statement for account %s is not finished", stmt.AccountNumber)
	}
	rows := Rows(stmt, time.Now().UTC())
	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.Migrate(ctx); err != nil {
		return 0, err
	}
	if _, err := s.upsertQuery(rows).Exec(ctx); err != nil {
		return 0, fmt.Errorf("writing to %s: %w", s.table, err)
	}

	klog.Infof("Upserted %d transactions into %s", len(rows), s.table)
	return len(rows), nil
}

func (s *Store) createTableQuery() *bun.CreateTableQuery {
	return s.db.NewCreateTable().
		Model((*SQLTransaction)(nil)).
		ModelTableExpr("?", bun.Ident(s.table)).
		IfNotExists()
}

func (s *Store) upsertQuery(rows []SQLTransaction) *bun.InsertQuery {
	return s.db.NewInsert().
		Model(&rows).
		ModelTableExpr("?", bun.Ident(s.table)).
		On("CONFLICT (key) DO UPDATE")
}

// Rows converts the transactions of a finished statement to table rows.
func Rows(stmt *model.Statement, updatedAt time.Time) []SQLTransaction {
	rows := make([]SQLTransaction, 0, stmt.Len())
	for _, tx := range stmt.Transactions {
		rows = append(rows, SQLTransaction{
			Key:         tx.Key,
			Account:     stmt.AccountNumber,
			Date:        tx.Date,
			ValueDate:   tx.ValueDate,
			Description: tx.Description,
			Amount:      tx.Amount,
			Balance:     tx.NewBalance,
			Line:        tx.Line,
			UpdatedAt:   updatedAt,
		})
	}
	return rows
}
