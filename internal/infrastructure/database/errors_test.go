package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	pgxErr := fmt.Errorf("insert novel: %w", &pgconn.PgError{Code: "23505", ConstraintName: "novels_slug_key"})
	assert.True(t, IsUniqueViolation(pgxErr))
	assert.False(t, IsForeignKeyViolation(pgxErr))
	assert.Equal(t, "novels_slug_key", ConstraintName(pgxErr))

	pqErr := &pq.Error{Code: "23514", Constraint: "profiles_coins_check"}
	assert.True(t, IsCheckViolation(pqErr))
	assert.Equal(t, "profiles_coins_check", ConstraintName(pqErr))

	fkErr := &pgconn.PgError{Code: "23503"}
	assert.True(t, IsForeignKeyViolation(fkErr))

	plain := errors.New("boom")
	assert.False(t, IsUniqueViolation(plain))
	assert.Empty(t, ConstraintName(plain))
}
