package mysql

import (
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

// MySQL server error numbers mapped onto domain errors.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
	errCheckViolated   = 3819
)

// classify translates constraint violations into domain errors and passes
// everything else through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysqldrv.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case errDupEntry:
		return fmt.Errorf("%w: duplicate entry", domain.ErrConflict)
	case errRowIsReferenced:
		return fmt.Errorf("%w: still referenced by bookings", domain.ErrConflict)
	case errNoReferencedRow:
		return fmt.Errorf("%w: referenced row does not exist", domain.ErrNotFound)
	case errCheckViolated:
		return fmt.Errorf("%w: %s", domain.ErrValidation, me.Message)
	}
	return err
}
