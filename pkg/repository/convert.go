package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngolasuite/ngola/pkg/datastore"
)

// row reads typed values out of a datastore record. Backends disagree on
// how numbers, timestamps and JSON come back, so every reader accepts the
// shapes both drivers produce. The first conversion failure is kept in err.
type row struct {
	rec datastore.Record
	err error
}

func (r *row) fail(col string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: column %s has unexpected value %T", ErrCorruptRow, col, v)
	}
}

func (r *row) str(col string) string {
	switch v := r.rec[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		r.fail(col, v)
		return ""
	}
}

var timeLayouts = []string{
	datastore.TimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (r *row) optTime(col string) *time.Time {
	switch v := r.rec[col].(type) {
	case nil:
		return nil
	case time.Time:
		t := v.UTC()
		return &t
	case string, []byte:
		s := r.str(col)
		if s == "" {
			return nil
		}
		t, ok := parseTime(s)
		if !ok {
			r.fail(col, v)
			return nil
		}
		return &t
	default:
		r.fail(col, v)
		return nil
	}
}

func (r *row) time(col string) time.Time {
	if t := r.optTime(col); t != nil {
		return *t
	}
	return time.Time{}
}

func (r *row) optDecimal(col string) *decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := r.rec[col].(type) {
	case nil:
		return nil
	case decimal.Decimal:
		d = v
	case string:
		if v == "" {
			return nil
		}
		d, err = decimal.NewFromString(v)
	case []byte:
		d, err = decimal.NewFromString(string(v))
	case float64:
		d = decimal.NewFromFloat(v)
	case int64:
		d = decimal.NewFromInt(v)
	default:
		r.fail(col, v)
		return nil
	}
	if err != nil {
		r.fail(col, r.rec[col])
		return nil
	}
	return &d
}

func (r *row) int(col string) int {
	switch v := r.rec[col].(type) {
	case nil:
		return 0
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(col, v)
		}
		return n
	default:
		r.fail(col, v)
		return 0
	}
}

func (r *row) optFloat(col string) *float64 {
	var f float64
	switch v := r.rec[col].(type) {
	case nil:
		return nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int64:
		f = float64(v)
	case string, []byte:
		var err error
		if f, err = strconv.ParseFloat(r.str(col), 64); err != nil {
			r.fail(col, v)
			return nil
		}
	default:
		r.fail(col, v)
		return nil
	}
	return &f
}

func (r *row) bytes(col string) []byte {
	switch v := r.rec[col].(type) {
	case nil:
		return nil
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		r.fail(col, v)
		return nil
	}
}

// json decodes a JSON column into dst. NULL leaves dst untouched.
func (r *row) json(col string, dst any) {
	var raw []byte
	switch v := r.rec[col].(type) {
	case nil:
		return
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		// Some drivers decode JSON themselves.
		b, err := json.Marshal(v)
		if err != nil {
			r.fail(col, v)
			return
		}
		raw = b
	}
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.fail(col, r.rec[col])
	}
}

// Writers turn optional domain values into bind arguments, with the zero
// value stored as NULL.

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func jsonArg(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
