package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure from
// postgres (pgx or lib/pq) or sqlite. When constraint is set, the violated
// constraint or column must mention it.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return constraint == "" || strings.Contains(pgErr.ConstraintName, constraint)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return constraint == "" || strings.Contains(pqErr.Constraint, constraint)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraint == "" || strings.Contains(err.Error(), constraint)
	}

	msg := err.Error()
	if strings.Contains(msg, "duplicate key value") {
		return constraint == "" || strings.Contains(msg, constraint)
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return constraint == "" || strings.Contains(msg, constraint) || strings.Contains(msg, sqliteColumn(constraint))
	}
	return false
}

// sqliteColumn maps a "<table>_<column>_key" constraint name to the
// "table.column" form sqlite reports.
func sqliteColumn(constraint string) string {
	table, column, ok := strings.Cut(strings.TrimSuffix(constraint, "_key"), "_")
	if !ok {
		return constraint
	}
	return table + "." + column
}

// IsNotFound reports whether err is gorm's missing record sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
