package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates the statement text and its bind arguments.
// Placeholders are numbered from the current argument count, so every
// bind produces the next $N in sequence.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) text(s string) {
	w.buf.WriteString(s)
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// rewrite copies a raw SQL fragment, replacing each '?' with the next
// numbered placeholder bound to the matching fragment argument. With no
// fragment arguments the text passes through untouched.
func (w *sqlWriter) rewrite(fragment string, fragmentArgs []any) {
	if len(fragmentArgs) == 0 {
		w.text(fragment)
		return
	}

	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] != '?' {
			w.buf.WriteByte(fragment[i])
			continue
		}
		if next >= len(fragmentArgs) {
			w.buf.WriteByte('?')
			continue
		}
		w.bind(fragmentArgs[next])
		next++
	}
}

func (w *sqlWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.text(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.text(" AND ")
		}
		c.writeTo(w)
	}
}

type Condition interface {
	writeTo(w *sqlWriter)
}

type binaryCond struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition {
	return binaryCond{column: column, op: "=", value: value}
}

func Lt(column string, value any) Condition {
	return binaryCond{column: column, op: "<", value: value}
}

func Lte(column string, value any) Condition {
	return binaryCond{column: column, op: "<=", value: value}
}

func Gte(column string, value any) Condition {
	return binaryCond{column: column, op: ">=", value: value}
}

func (c binaryCond) writeTo(w *sqlWriter) {
	w.text(c.column)
	w.text(" ")
	w.text(c.op)
	w.text(" ")
	w.bind(c.value)
}

type inCond struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCond{column: column, values: values}
}

func (c inCond) writeTo(w *sqlWriter) {
	// An empty IN list matches nothing rather than producing bad SQL.
	if len(c.values) == 0 {
		w.text("1=0")
		return
	}

	w.text(c.column)
	w.text(" IN (")
	for i, v := range c.values {
		if i > 0 {
			w.text(", ")
		}
		w.bind(v)
	}
	w.text(")")
}

type isNullCond struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCond{column: column}
}

func (c isNullCond) writeTo(w *sqlWriter) {
	w.text(c.column)
	w.text(" IS NULL")
}

type exprCond struct {
	fragment string
	args     []any
}

// Expr embeds a raw SQL fragment with '?' placeholders.
func Expr(fragment string, args ...any) Condition {
	return exprCond{fragment: fragment, args: args}
}

func (c exprCond) writeTo(w *sqlWriter) {
	w.rewrite(c.fragment, c.args)
}

type eqLiteralCond struct {
	column string
	value  string
}

// EqLiteral compares a column against an inline quoted string. Used for
// trusted constant values only, never request input.
func EqLiteral(column, value string) Condition {
	return eqLiteralCond{column: column, value: value}
}

func (c eqLiteralCond) writeTo(w *sqlWriter) {
	w.text(c.column)
	w.text(" = '")
	w.text(strings.ReplaceAll(c.value, "'", "''"))
	w.text("'")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &sqlWriter{args: make([]any, 0, len(b.where))}
	w.text("SELECT ")
	w.text(strings.Join(b.columns, ", "))
	w.text(" FROM ")
	w.text(b.table)
	w.where(b.where)
	if len(b.groupBy) > 0 {
		w.text(" GROUP BY ")
		w.text(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		w.text(" ORDER BY ")
		w.text(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.text(" LIMIT ")
		w.text(strconv.Itoa(b.limit))
	}

	return w.buf.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw trailing SQL, typically an ON CONFLICT clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &sqlWriter{args: make([]any, 0, len(b.rows)*len(b.columns))}
	w.text("INSERT INTO ")
	w.text(b.table)
	w.text(" (")
	w.text(strings.Join(b.columns, ", "))
	w.text(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.text(", ")
		}
		w.text("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.text(", ")
			}
			w.bind(value)
		}
		w.text(")")
	}

	if b.suffix != "" {
		w.text(" ")
		w.rewrite(b.suffix, nil)
	}

	return w.buf.String(), w.args, nil
}

type setClause struct {
	column   string
	value    any
	fragment string
	args     []any
	isExpr   bool
}

type UpdateBuilder struct {
	table  string
	sets   []setClause
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression, e.g. SetExpr("version", "version + 1").
func (b *UpdateBuilder) SetExpr(column, fragment string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, fragment: fragment, args: args, isExpr: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &sqlWriter{args: make([]any, 0, len(b.sets)+len(b.where))}
	w.text("UPDATE ")
	w.text(b.table)
	w.text(" SET ")

	for i, s := range b.sets {
		if i > 0 {
			w.text(", ")
		}
		w.text(s.column)
		w.text(" = ")
		if s.isExpr {
			w.rewrite(s.fragment, s.args)
		} else {
			w.bind(s.value)
		}
	}

	w.where(b.where)
	if b.suffix != "" {
		w.text(" ")
		w.rewrite(b.suffix, nil)
	}

	return w.buf.String(), w.args, nil
}
