package persist

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// DBID is an auto-generated integer row identifier. The zero value stands for "no id" and is
// stored as NULL, which is how nullable references such as a comment's parent are represented.
type DBID int64

func (d DBID) String() string {
	return strconv.FormatInt(int64(d), 10)
}

// IsValid reports whether d references a row
func (d DBID) IsValid() bool {
	return d > 0
}

// Scan implements the database/sql Scanner interface for the DBID type
func (d *DBID) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = 0
	case int64:
		*d = DBID(v)
	case int32:
		*d = DBID(v)
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into DBID", src)
	}
	return nil
}

// Value implements the database/sql driver Valuer interface for the DBID type
func (d DBID) Value() (driver.Value, error) {
	if !d.IsValid() {
		return nil, nil
	}
	return int64(d), nil
}

// ParseDBID parses a decimal id such as a path parameter
func ParseDBID(s string) (DBID, error) {
	var d DBID
	if err := d.parse(s); err != nil {
		return 0, err
	}
	return d, nil
}

func (d *DBID) parse(s string) error {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*d = DBID(i)
	return nil
}

// DBIDList is a list of ids that converts to a plain integer slice for array parameters
type DBIDList []DBID

func (l DBIDList) Int64s() []int64 {
	result := make([]int64, len(l))
	for i, id := range l {
		result[i] = int64(id)
	}
	return result
}

// ErrPersistence wraps a failed read or write against the store
type ErrPersistence struct {
	Op  string
	Err error
}

func (e ErrPersistence) Error() string {
	return fmt.Sprintf("persistence failure during %s: %s", e.Op, e.Err)
}

func (e ErrPersistence) Unwrap() error {
	return e.Err
}
