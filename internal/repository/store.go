package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/safe_route_system/internal/service"
	"github.com/shenikar/safe_route_system/pkg/e"
)

// ErrAlreadyInTx возвращается при попытке открыть вложенную транзакцию
var ErrAlreadyInTx = errors.New("already in tx")

// DB — подмножество методов pgx, общее для пула и транзакции
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store реализует service.Store поверх PostgreSQL
type Store struct {
	pool *pgxpool.Pool
	db   DB
	inTx bool
}

var _ service.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		db:   pool,
	}
}

func (s *Store) Users() service.UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) Reports() service.ReportRepository {
	return &ReportRepository{db: s.db}
}

// WithTx открывает транзакцию и передаёт в fn хранилище, привязанное к ней.
// Коммит выполняется, если fn вернула nil, иначе транзакция откатывается.
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	if s.inTx {
		return ErrAlreadyInTx
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return e.WrapError(ctx, "begin tx", err)
	}
	defer func() {
		// после Commit откат ничего не делает
		_ = tx.Rollback(context.Background())
	}()

	if err := fn(&Store{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return e.WrapError(ctx, "commit tx", fmt.Errorf("could not commit tx: %w", err))
	}
	return nil
}
