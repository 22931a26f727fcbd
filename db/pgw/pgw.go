// pgx wrappers
package pgw

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Queryable interface {
	Begin() (*Tx, error)
	Exec(sql string, args ...any) (pgconn.CommandTag, error)
	Query(sql string, args ...any) (pgx.Rows, error)
	QueryRow(sql string, args ...any) pgx.Row
}

type Pool struct {
	impl *pgxpool.Pool
}

func NewPool(ctx context.Context, connString string) (*Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Pool{pool}, nil
}

func (pool *Pool) Acquire(ctx context.Context) (*Conn, error) {
	conn, err := pool.impl.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	return &Conn{
		impl: conn,
		ctx:  ctx,
	}, nil
}

func (pool *Pool) Ping(ctx context.Context) error {
	return pool.impl.Ping(ctx)
}

func (pool *Pool) Close() {
	pool.impl.Close()
}

type Conn struct {
	impl *pgxpool.Conn
	ctx  context.Context
}

func (conn *Conn) Begin() (*Tx, error) {
	tx, err := conn.impl.Begin(conn.ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{
		impl: tx,
		ctx:  conn.ctx,
	}, nil
}

func (conn *Conn) Exec(sql string, args ...any) (pgconn.CommandTag, error) {
	return conn.impl.Exec(conn.ctx, sql, args...)
}

func (conn *Conn) Query(sql string, args ...any) (pgx.Rows, error) {
	return conn.impl.Query(conn.ctx, sql, args...)
}

func (conn *Conn) QueryRow(sql string, args ...any) pgx.Row {
	return conn.impl.QueryRow(conn.ctx, sql, args...)
}

func (conn *Conn) Release() {
	conn.impl.Release()
}

type Tx struct {
	impl pgx.Tx
	ctx  context.Context
}

// Begin starts a pseudo nested transaction.
func (tx *Tx) Begin() (*Tx, error) {
	nested, err := tx.impl.Begin(tx.ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{
		impl: nested,
		ctx:  tx.ctx,
	}, nil
}

func (tx *Tx) Commit() error {
	return tx.impl.Commit(tx.ctx)
}

// Rollback is safe to call after Commit, so a defer tx.Rollback() works in
// the non-error path too.
func (tx *Tx) Rollback() error {
	return tx.impl.Rollback(tx.ctx)
}

func (tx *Tx) Exec(sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.impl.Exec(tx.ctx, sql, args...)
}

func (tx *Tx) Query(sql string, args ...any) (pgx.Rows, error) {
	return tx.impl.Query(tx.ctx, sql, args...)
}

func (tx *Tx) QueryRow(sql string, args ...any) pgx.Row {
	return tx.impl.QueryRow(tx.ctx, sql, args...)
}
