package pgstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/store"
)

// queryBuilder assembles the predicate of a list query as the conjunction
// of only the supplied filters. All values are parameter-bound.
type queryBuilder struct {
	conditions []string
	args       []interface{}
}

// whereEqual adds an exact-match predicate, used for booleans and enums.
func (q *queryBuilder) whereEqual(column string, value interface{}) {
	q.args = append(q.args, value)
	q.conditions = append(q.conditions, fmt.Sprintf("%s = $%d", column, len(q.args)))
}

// whereSubstring adds a case-insensitive substring predicate, used for
// free text columns.
func (q *queryBuilder) whereSubstring(column, value string) {
	q.args = append(q.args, value)
	q.conditions = append(q.conditions, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", column, len(q.args)))
}

// whereContains adds an array containment predicate.
func (q *queryBuilder) whereContains(column string, value interface{}) {
	q.args = append(q.args, value)
	q.conditions = append(q.conditions, fmt.Sprintf("$%d = ANY(%s)", len(q.args), column))
}

// whereNull constrains a column to be NULL. Takes no parameter.
func (q *queryBuilder) whereNull(column string) {
	q.conditions = append(q.conditions, column+" IS NULL")
}

func (q *queryBuilder) where() string {
	if len(q.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conditions, " AND ")
}

// selectPage builds the paginated read query. A count(*) OVER() window
// carries the total number of matches alongside every row, so one round
// trip serves both the page and the page count.
func (q *queryBuilder) selectPage(columns, from, orderBy string, page store.Page) (string, []interface{}) {
	query := "SELECT " + columns + ", count(*) OVER() AS full_count FROM " + from + q.where() +
		fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d;", orderBy, len(q.args)+1, len(q.args)+2)
	args := append(append([]interface{}{}, q.args...), page.Size, page.Offset())
	return query, args
}

// selectCount builds the companion count query over the same predicate.
// It is needed when the requested page lies beyond the last match and the
// window function therefore returned no rows.
func (q *queryBuilder) selectCount(from string) (string, []interface{}) {
	return "SELECT count(*) FROM " + from + q.where() + ";", q.args
}

// prefixColumns qualifies every column of a comma-separated list with a
// table alias, for use in JOIN queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// updateBuilder assembles a sparse SET clause from whichever fields the
// caller supplied. Unsupplied fields are left untouched.
type updateBuilder struct {
	assignments []string
	args        []interface{}
}

func (u *updateBuilder) set(column string, value interface{}) {
	u.args = append(u.args, value)
	u.assignments = append(u.assignments, fmt.Sprintf("%s = $%d", column, len(u.args)))
}

// empty returns true if no field was supplied. Callers must reject the
// update before build in that case.
func (u *updateBuilder) empty() bool {
	return len(u.assignments) == 0
}

// build produces the final statement, without a trailing semicolon so a
// RETURNING clause can be appended. It always touches updated_at.
func (u *updateBuilder) build(table, idColumn string, id uuid.UUID, now time.Time) (string, []interface{}) {
	u.set("updated_at", now)
	u.args = append(u.args, id)
	query := "UPDATE " + table + " SET " + strings.Join(u.assignments, ", ") +
		fmt.Sprintf(" WHERE %s = $%d", idColumn, len(u.args))
	return query, u.args
}
