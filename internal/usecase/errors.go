package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
)

// callerFromContext returns the identity set by the auth middleware
func callerFromContext(ctx context.Context) (entity.Identity, error) {
	identity, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return entity.Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// isDuplicateKeyError checks if the error is a unique constraint violation
// containing the specified constraint name. gorm.ErrDuplicatedKey is accepted
// as well since dialects with TranslateError report it without a name.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
