package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ngolasuite/ngola/pkg/logger"
)

// DB is a Store over database/sql. Use OpenSQLite, OpenPostgres or Open.
type DB struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	ping    func(context.Context) error
	closers []func() error
}

var _ Store = (*DB)(nil)

// Option configures a DB.
type Option func(*DB)

func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

func newDB(db *sql.DB, dl dialect, opts ...Option) *DB {
	d := &DB{db: db, dialect: dl, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("datastore"), slog.String("dialect", dl.name))
	d.closers = append(d.closers, db.Close)
	return d
}

// SQL exposes the underlying handle for migrations and diagnostics.
func (d *DB) SQL() *sql.DB { return d.db }

// Dialect returns "postgres" or "sqlite".
func (d *DB) Dialect() string { return d.dialect.name }

func (d *DB) Ping(ctx context.Context) error {
	var err error
	if d.ping != nil {
		err = d.ping(ctx)
	} else {
		err = d.db.PingContext(ctx)
	}
	if err != nil {
		return &Error{Code: CodeUnavailable, Op: "ping", Err: err}
	}
	return nil
}

// Close releases the handle and, for Postgres, the pool behind it.
func (d *DB) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("datastore: close: %w", errs[0])
	}
	return nil
}

func (d *DB) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	b := d.builder()
	if err := b.selectQuery(table, q); err != nil {
		return nil, invalid("select", table, err)
	}
	return d.query(ctx, "select", table, b.String(), b.args)
}

func (d *DB) First(ctx context.Context, table string, q Query) (Record, error) {
	q.Limit = 1
	rows, err := d.Select(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("first", table)
	}
	return rows[0], nil
}

func (d *DB) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	b := d.builder()
	if err := b.insert(table, rec); err != nil {
		return nil, invalid("insert", table, err)
	}
	rows, err := d.query(ctx, "insert", table, b.String(), b.args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &Error{Code: CodeInternal, Op: "insert", Table: table, Err: sql.ErrNoRows}
	}
	return rows[0], nil
}

func (d *DB) Update(ctx context.Context, table string, patch Record, where Filter) (int64, error) {
	b := d.builder()
	if err := b.update(table, patch, where); err != nil {
		return 0, invalid("update", table, err)
	}
	return d.exec(ctx, "update", table, b.String(), b.args)
}

func (d *DB) Delete(ctx context.Context, table string, where Filter) (int64, error) {
	if len(where) == 0 {
		return 0, invalid("delete", table, errEmptyFilter)
	}
	b := d.builder()
	if err := checkIdent(table); err != nil {
		return 0, invalid("delete", table, err)
	}
	b.WriteString("DELETE FROM " + table)
	if err := b.where(where); err != nil {
		return 0, invalid("delete", table, err)
	}
	return d.exec(ctx, "delete", table, b.String(), b.args)
}

func (d *DB) Count(ctx context.Context, table string, where Filter) (int64, error) {
	b := d.builder()
	if err := checkIdent(table); err != nil {
		return 0, invalid("count", table, err)
	}
	b.WriteString("SELECT COUNT(*) FROM " + table)
	if err := b.where(where); err != nil {
		return 0, invalid("count", table, err)
	}
	var n int64
	if err := d.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&n); err != nil {
		return 0, d.classify("count", table, err)
	}
	return n, nil
}

func (d *DB) query(ctx context.Context, op, table, query string, args []any) ([]Record, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.classify(op, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, d.classify(op, table, err)
	}
	var out []Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, d.classify(op, table, err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, d.classify(op, table, err)
	}
	return out, nil
}

func (d *DB) exec(ctx context.Context, op, table, query string, args []any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, d.classify(op, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, d.classify(op, table, err)
	}
	return n, nil
}

// builder accumulates one statement and its bound arguments.
type builder struct {
	strings.Builder
	dialect dialect
	args    []any
}

func (d *DB) builder() *builder { return &builder{dialect: d.dialect} }

func (b *builder) arg(v any) string {
	b.args = append(b.args, b.dialect.bind(v))
	return b.dialect.placeholder(len(b.args))
}

func (b *builder) selectQuery(table string, q Query) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	if err := checkIdent(q.Columns...); err != nil {
		return err
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errBadPaging
	}

	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ", ")
	}
	b.WriteString("SELECT " + cols + " FROM " + table)
	if err := b.where(q.Filter); err != nil {
		return err
	}
	if len(q.Order) > 0 {
		parts := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			if err := checkIdent(o.Column); err != nil {
				return err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, o.Column+" "+dir)
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		if q.Limit == 0 {
			b.WriteString(" " + b.dialect.noLimit)
		}
		b.WriteString(" OFFSET " + strconv.Itoa(q.Offset))
	}
	return nil
}

func (b *builder) insert(table string, rec Record) error {
	if len(rec) == 0 {
		return errEmptyRecord
	}
	cols := slices.Sorted(maps.Keys(rec))
	if err := checkIdent(append([]string{table}, cols...)...); err != nil {
		return err
	}
	marks := make([]string, len(cols))
	for i, c := range cols {
		marks[i] = b.arg(rec[c])
	}
	fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return nil
}

func (b *builder) update(table string, patch Record, where Filter) error {
	if len(where) == 0 {
		return errEmptyFilter
	}
	if len(patch) == 0 {
		return errEmptyRecord
	}
	cols := slices.Sorted(maps.Keys(patch))
	if err := checkIdent(append([]string{table}, cols...)...); err != nil {
		return err
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = " + b.arg(patch[c])
	}
	b.WriteString("UPDATE " + table + " SET " + strings.Join(sets, ", "))
	return b.where(where)
}

func (b *builder) where(f Filter) error {
	if len(f) == 0 {
		return nil
	}
	parts := make([]string, 0, len(f))
	for _, c := range f {
		if err := checkIdent(c.Column); err != nil {
			return err
		}
		part, err := b.cond(c)
		if err != nil {
			return err
		}
		parts = append(parts, part)
	}
	b.WriteString(" WHERE " + strings.Join(parts, " AND "))
	return nil
}

func (b *builder) cond(c Cond) (string, error) {
	switch c.Op {
	case OpEq, "":
		if c.Value == nil {
			return c.Column + " IS NULL", nil
		}
		return c.Column + " = " + b.arg(c.Value), nil
	case OpNeq, OpLt, OpLte, OpGt, OpGte:
		return c.Column + " " + string(c.Op) + " " + b.arg(c.Value), nil
	case OpIsNull:
		if isNull, _ := c.Value.(bool); isNull {
			return c.Column + " IS NULL", nil
		}
		return c.Column + " IS NOT NULL", nil
	case OpIn:
		vals := listOf(c.Value)
		if len(vals) == 0 {
			return "", errBadInValue
		}
		marks := make([]string, len(vals))
		for i, v := range vals {
			marks[i] = b.arg(v)
		}
		return c.Column + " IN (" + strings.Join(marks, ", ") + ")", nil
	case OpContains:
		s, _ := c.Value.(string)
		return c.Column + " " + b.dialect.like + " " + b.arg("%"+escapeLike(s)+"%") + ` ESCAPE '\'`, nil
	}
	return "", fmt.Errorf("%w: %q", errBadOperator, c.Op)
}

func listOf(v any) []any {
	switch vs := v.(type) {
	case []any:
		return vs
	case []string:
		out := make([]any, len(vs))
		for i, s := range vs {
			out[i] = s
		}
		return out
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
