package e

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки, которые вызывающая сторона может исправить сама
var (
	ErrNotFound           = errors.New("not found")
	ErrSelfValidation     = errors.New("self validation forbidden")
	ErrAlreadyResolved    = errors.New("report already resolved")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrRoutingUnavailable = errors.New("routing unavailable")
	ErrMalformedInput     = errors.New("malformed input")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Инфраструктурные ошибки
var (
	ErrInternal        = errors.New("internal error")
	ErrDeadline        = errors.New("deadline exceeded")
	ErrCanceled        = errors.New("context canceled")
	ErrUniqueViolation = errors.New("unique violation")
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

// WrapError приводит ошибки pgx и контекста к таксономии пакета
func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrDeadline)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrCanceled)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
		case "23503", "23514":
			return fmt.Errorf("%s: %w", op, ErrMalformedInput)
		default:
			return fmt.Errorf("%s: pg error %s: %w", op, pgErr.Code, ErrInternal)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrInternal)
}

// IsCallerError сообщает, относится ли ошибка к ожидаемым ошибкам запроса
func IsCallerError(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrSelfValidation,
		ErrAlreadyResolved,
		ErrInvalidCoordinates,
		ErrInvalidProfile,
		ErrRoutingUnavailable,
		ErrMalformedInput,
		ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
