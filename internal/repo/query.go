package repo

import (
	"strconv"
	"strings"
)

// params collects positional arguments and hands out $n placeholders in
// the order values are bound.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// predicate is a single "column op value" condition. The value is always
// bound as a parameter, never spliced into the statement.
type predicate struct {
	column string
	op     string
	value  any
}

type selectQuery struct {
	table   string
	columns []string
	where   []predicate
	orderBy string
}

func newSelect(table string, columns ...string) *selectQuery {
	return &selectQuery{table: table, columns: columns}
}

func (q *selectQuery) Where(column, op string, value any) *selectQuery {
	q.where = append(q.where, predicate{column: column, op: op, value: value})
	return q
}

func (q *selectQuery) OrderBy(expr string) *selectQuery {
	q.orderBy = expr
	return q
}

func (q *selectQuery) Build() (string, []any) {
	var (
		sb strings.Builder
		p  params
	)
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.table)
	writeWhere(&sb, &p, q.where)
	if q.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.orderBy)
	}
	return sb.String(), p.args
}

type assignment struct {
	column string
	value  any
}

type updateQuery struct {
	table string
	set   []assignment
	where []predicate
}

func newUpdate(table string) *updateQuery {
	return &updateQuery{table: table}
}

func (q *updateQuery) Set(column string, value any) *updateQuery {
	q.set = append(q.set, assignment{column: column, value: value})
	return q
}

func (q *updateQuery) Where(column, op string, value any) *updateQuery {
	q.where = append(q.where, predicate{column: column, op: op, value: value})
	return q
}

// Build returns ok=false when there is nothing to set.
func (q *updateQuery) Build() (string, []any, bool) {
	if len(q.set) == 0 {
		return "", nil, false
	}
	var (
		sb strings.Builder
		p  params
	)
	sb.WriteString("UPDATE ")
	sb.WriteString(q.table)
	sb.WriteString(" SET ")
	for i, a := range q.set {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.column)
		sb.WriteString(" = ")
		sb.WriteString(p.bind(a.value))
	}
	writeWhere(&sb, &p, q.where)
	return sb.String(), p.args, true
}

func writeWhere(sb *strings.Builder, p *params, preds []predicate) {
	for i, pr := range preds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(pr.column)
		sb.WriteString(" ")
		sb.WriteString(pr.op)
		sb.WriteString(" ")
		sb.WriteString(p.bind(pr.value))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into an ILIKE pattern matching it as
// a literal substring.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
