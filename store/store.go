// Package store caches a flow collection in a SQL database so repeated
// searches need not re-parse trace files.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shibukawa/flowquery/dataflow"
)

// Store is a flow collection persisted in SQLite, PostgreSQL or MySQL.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS flowquery_flows (
		flow_index INTEGER NOT NULL PRIMARY KEY,
		token_count INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS flowquery_tokens (
		flow_index INTEGER NOT NULL,
		pos INTEGER NOT NULL,
		kind VARCHAR(32) NOT NULL,
		name VARCHAR(255),
		type_args TEXT,
		arg_index INTEGER,
		line_no INTEGER,
		range_start INTEGER,
		range_end INTEGER,
		description TEXT,
		PRIMARY KEY (flow_index, pos)
	)`,
}

const insertToken = `INSERT INTO flowquery_tokens
	(flow_index, pos, kind, name, type_args, arg_index, line_no, range_start, range_end, description)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Open connects to the database at databaseURL (sqlite://, postgres:// or
// mysql://) and checks that it answers.
func Open(ctx context.Context, databaseURL string, pool PoolSettings) (*Store, error) {
	db, dialect, err := connect(databaseURL, pool)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// Dialect returns the dialect of the underlying database.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate flow store: %w", err)
		}
	}

	return nil
}

// Save replaces the stored collection with the flows of fdb in a single
// transaction.
func (s *Store) Save(ctx context.Context, fdb *dataflow.Database) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM flowquery_tokens", "DELETE FROM flowquery_flows"} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear flow store: %w", err)
		}
	}

	insertFlowStmt, err := tx.PrepareContext(ctx, rebind(s.dialect, "INSERT INTO flowquery_flows (flow_index, token_count) VALUES (?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare flow insert: %w", err)
	}
	defer insertFlowStmt.Close()

	insertTokenStmt, err := tx.PrepareContext(ctx, rebind(s.dialect, insertToken))
	if err != nil {
		return fmt.Errorf("failed to prepare token insert: %w", err)
	}
	defer insertTokenStmt.Close()

	for i, flow := range fdb.Flows() {
		if _, err = insertFlowStmt.ExecContext(ctx, i, flow.Len()); err != nil {
			return fmt.Errorf("failed to save flow %d: %w", i, err)
		}

		for pos, tok := range flow.All() {
			var r tokenRow

			r, err = toRow(tok)
			if err != nil {
				return err
			}

			_, err = insertTokenStmt.ExecContext(ctx, i, pos, r.kind, r.name, r.typeArgs, r.argIndex, r.line, r.start, r.end, r.desc)
			if err != nil {
				return fmt.Errorf("failed to save flow %d token %d: %w", i, pos, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flow store: %w", err)
	}

	return nil
}

// Load reads the stored collection, preserving flow and token order.
func (s *Store) Load(ctx context.Context) (*dataflow.Database, error) {
	counts, err := s.flowCounts(ctx)
	if err != nil {
		return nil, err
	}

	tokens := make([][]dataflow.Token, len(counts))

	rows, err := s.db.QueryContext(ctx, `SELECT flow_index, pos, kind, name, type_args, arg_index, line_no, range_start, range_end, description
		FROM flowquery_tokens ORDER BY flow_index, pos`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			flowIndex, pos int
			r              tokenRow
		)

		if err := rows.Scan(&flowIndex, &pos, &r.kind, &r.name, &r.typeArgs, &r.argIndex, &r.line, &r.start, &r.end, &r.desc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
		}

		if flowIndex < 0 || flowIndex >= len(tokens) || pos != len(tokens[flowIndex]) {
			return nil, fmt.Errorf("%w: unexpected token %d of flow %d", ErrCorruptStore, pos, flowIndex)
		}

		tok, err := r.toToken()
		if err != nil {
			return nil, fmt.Errorf("%w: flow %d token %d: %w", ErrCorruptStore, flowIndex, pos, err)
		}

		tokens[flowIndex] = append(tokens[flowIndex], tok)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	flows := make([]dataflow.Flow, len(tokens))

	for i, flowTokens := range tokens {
		if len(flowTokens) != counts[i] {
			return nil, fmt.Errorf("%w: flow %d has %d tokens, expected %d", ErrCorruptStore, i, len(flowTokens), counts[i])
		}

		flows[i] = dataflow.NewFlow(flowTokens...)
	}

	return dataflow.NewDatabase(flows), nil
}

func (s *Store) flowCounts(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT flow_index, token_count FROM flowquery_flows ORDER BY flow_index")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var counts []int

	for rows.Next() {
		var index, count int
		if err := rows.Scan(&index, &count); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
		}

		if index != len(counts) {
			return nil, fmt.Errorf("%w: flow %d is missing", ErrCorruptStore, len(counts))
		}

		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return counts, nil
}

// tokenRow is the column layout of flowquery_tokens.
type tokenRow struct {
	kind     string
	name     sql.NullString
	typeArgs sql.NullString
	argIndex sql.NullInt64
	line     sql.NullInt64
	start    sql.NullInt64
	end      sql.NullInt64
	desc     sql.NullString
}

func toRow(t dataflow.Token) (tokenRow, error) {
	r := tokenRow{kind: t.Kind().String()}

	if desc, ok := t.Desc(); ok {
		r.desc = sql.NullString{String: desc, Valid: true}
	}

	switch tok := t.(type) {
	case dataflow.TypeToken:
		r.name = sql.NullString{String: tok.Name, Valid: true}

		if len(tok.TypeArgs) > 0 {
			args, err := json.Marshal(tok.TypeArgs)
			if err != nil {
				return r, fmt.Errorf("failed to encode type arguments: %w", err)
			}

			r.typeArgs = sql.NullString{String: string(args), Valid: true}
		}
	case dataflow.ConstructorArgToken:
		r.name = sql.NullString{String: tok.Name, Valid: true}
		r.argIndex = sql.NullInt64{Int64: int64(tok.ArgIndex), Valid: true}
	case dataflow.TypeVarToken:
		r.name = sql.NullString{String: tok.Name, Valid: true}
	case dataflow.LocationToken:
		r.line = sql.NullInt64{Int64: int64(tok.Line), Valid: true}
		r.start = sql.NullInt64{Int64: int64(tok.CharRange.Start), Valid: true}
		r.end = sql.NullInt64{Int64: int64(tok.CharRange.End), Valid: true}
	}

	return r, nil
}

func (r tokenRow) description() *string {
	if !r.desc.Valid {
		return nil
	}

	return dataflow.Describe(r.desc.String)
}

func (r tokenRow) toToken() (dataflow.Token, error) {
	switch r.kind {
	case dataflow.KindType.String():
		if !r.name.Valid {
			return nil, errors.New("type token without name")
		}

		var args []string
		if r.typeArgs.Valid {
			if err := json.Unmarshal([]byte(r.typeArgs.String), &args); err != nil {
				return nil, fmt.Errorf("invalid type arguments: %w", err)
			}
		}

		return dataflow.TypeToken{Name: r.name.String, TypeArgs: args, Description: r.description()}, nil

	case dataflow.KindConstructorArg.String():
		if !r.name.Valid || !r.argIndex.Valid || r.argIndex.Int64 < 0 {
			return nil, errors.New("constructor-arg token without name or valid index")
		}

		return dataflow.ConstructorArgToken{Name: r.name.String, ArgIndex: int(r.argIndex.Int64), Description: r.description()}, nil

	case dataflow.KindTypeVar.String():
		if !r.name.Valid {
			return nil, errors.New("type-variable token without name")
		}

		return dataflow.TypeVarToken{Name: r.name.String, Description: r.description()}, nil

	case dataflow.KindLocation.String():
		if !r.line.Valid || !r.start.Valid || !r.end.Valid || r.start.Int64 > r.end.Int64 {
			return nil, errors.New("location token without valid line or range")
		}

		return dataflow.LocationToken{
			Line:        int(r.line.Int64),
			CharRange:   dataflow.CharRange{Start: int(r.start.Int64), End: int(r.end.Int64)},
			Description: r.description(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown token kind %q", r.kind)
	}
}
