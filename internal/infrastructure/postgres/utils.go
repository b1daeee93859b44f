package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/rental-api/internal/domain"
)

// SQLSTATE que indican contención sobre bloqueos: el llamador puede reintentar.
var lockStates = map[string]struct{}{
	"55P03": {}, // lock_not_available (lock_timeout)
	"40P01": {}, // deadlock_detected
	"40001": {}, // serialization_failure
	"57014": {}, // query_canceled (statement_timeout)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: la fila referenciada no existe o sigue referenciada (ON DELETE RESTRICT).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

// isInvalidText 22P02: el valor no es válido para el tipo de la columna (p. ej. un id que no es UUID).
func isInvalidText(err error) bool {
	return pgCode(err) == "22P02"
}

func isLockError(err error) bool {
	_, ok := lockStates[pgCode(err)]
	return ok
}

// wrapErr traduce errores de Postgres a errores de dominio; el resto se envuelve con op.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isLockError(err):
		return &domain.LockTimeoutError{Op: op, Err: err}
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrConflict
	case isInvalidText(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case pgCode(err) == "22003":
		return &domain.ValidationError{Reason: op + ": valor numérico fuera de rango"}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID las claves primarias son UUID: un id mal formado no puede corresponder a ninguna fila.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs filtra los ids que no son UUID.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}
