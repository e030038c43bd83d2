package implementation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"
)

// classifyError translates raw driver errors into the repository sentinel
// errors while keeping the cause wrapped for inspection.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	// PostgreSQL (lib/pq): SQLSTATE 23505 unique_violation
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" {
			return fmt.Errorf("%w: %v", interfaces.ErrDuplicateKey, err)
		}
		return err
	}

	// SQLite: the driver does not export typed constraint errors
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", interfaces.ErrDuplicateKey, err)
	}

	return err
}

// rebind rewrites ? placeholders to $N for drivers that need them.
// Queries are written in ? style so the same SQL runs on sqlite3 and
// postgres.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
