package db

import (
	"fmt"
	"time"
)

// Timestamp scans both SQLite RFC3339 text and PostgreSQL TIMESTAMP columns.
type Timestamp struct {
	time.Time
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// timestampArg encodes t for the driver's timestamp column type.
func timestampArg(driverName string, t time.Time) interface{} {
	t = t.UTC()
	if driverName == DriverSQLite {
		return t.Format(time.RFC3339)
	}
	return t
}
