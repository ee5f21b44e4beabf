package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// pgCode trả về SQLSTATE từ lỗi của pgx hoặc lib/pq
func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

func IsUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == CodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == CodeForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	code, _ := pgCode(err)
	return code == CodeCheckViolation
}

// ConstraintName trả về tên constraint bị vi phạm (rỗng nếu không phải lỗi postgres)
func ConstraintName(err error) string {
	_, c := pgCode(err)
	return c
}
