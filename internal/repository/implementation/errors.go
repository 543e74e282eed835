package implementation

import (
	"errors"
	"strings"

	"rag-chatbot-be/internal/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateError maps driver errors onto the apperror taxonomy. Anything it does
// not recognise is returned unchanged.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s", op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "53"), // insufficient resources
			strings.HasPrefix(pgErr.Code, "57"): // operator intervention
			return apperror.Upstream(op, err)
		case pgErr.Code == "23505", pgErr.Code == "23502", pgErr.Code == "22001":
			return apperror.Validation("%s: %s", op, pgErr.Message)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperror.Upstream(op, err)
	}

	return err
}
