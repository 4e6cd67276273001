package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New returns a query set bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds the statements used by the stores.
type Queries struct {
	db DBTX
}

// WithTx returns a copy of q that runs inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Metadatum is a row of the metadata table.
type Metadatum struct {
	Worker    string
	Key       string
	Value     []byte
	CreatedAt int64
	UpdatedAt int64
}

const metadataGet = `-- name: MetadataGet :one
SELECT worker, key, value, created_at, updated_at FROM metadata
WHERE worker = ? AND key = ?
`

// MetadataGetParams selects a single metadata row.
type MetadataGetParams struct {
	Worker string
	Key    string
}

// MetadataGet returns sql.ErrNoRows when the row does not exist.
func (q *Queries) MetadataGet(ctx context.Context, arg MetadataGetParams) (Metadatum, error) {
	row := q.db.QueryRowContext(ctx, metadataGet, arg.Worker, arg.Key)
	var i Metadatum
	err := row.Scan(
		&i.Worker,
		&i.Key,
		&i.Value,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const metadataSet = `-- name: MetadataSet :exec
INSERT INTO metadata (worker, key, value, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (worker, key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at
`

// MetadataSetParams upserts a metadata row.
type MetadataSetParams struct {
	Worker    string
	Key       string
	Value     []byte
	CreatedAt int64
	UpdatedAt int64
}

func (q *Queries) MetadataSet(ctx context.Context, arg MetadataSetParams) error {
	_, err := q.db.ExecContext(ctx, metadataSet,
		arg.Worker,
		arg.Key,
		arg.Value,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const metadataListWorkers = `-- name: MetadataListWorkers :many
SELECT DISTINCT worker FROM metadata
WHERE key = ?
ORDER BY worker
`

// MetadataListWorkers returns every worker holding a document under key.
func (q *Queries) MetadataListWorkers(ctx context.Context, key string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, metadataListWorkers, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []string
	for rows.Next() {
		var worker string
		if err := rows.Scan(&worker); err != nil {
			return nil, err
		}
		items = append(items, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
