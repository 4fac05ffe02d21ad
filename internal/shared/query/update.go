package query

import (
	"fmt"
	"strings"
)

// Update accumulates SET assignments for a bulk update.
type Update struct {
	sets []string
	args []interface{}
}

func (u *Update) Set(column string, value interface{}) {
	u.args = append(u.args, value)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", column, len(u.args)))
}

// SetExpr adds an assignment whose right-hand side is a fixed SQL expression.
func (u *Update) SetExpr(column, expr string) {
	u.sets = append(u.sets, column+" = "+expr)
}

func (u *Update) Empty() bool {
	return len(u.sets) == 0
}

// Columns lists the assigned columns in order.
func (u *Update) Columns() []string {
	cols := make([]string, len(u.sets))
	for i, s := range u.sets {
		cols[i] = s[:strings.Index(s, " = ")]
	}
	return cols
}

// ByIDs renders "UPDATE table SET ... WHERE id = ANY($n)".
func (u *Update) ByIDs(table string, ids interface{}, touchUpdatedAt bool) (string, []interface{}) {
	sets := u.sets
	if touchUpdatedAt {
		sets = append(append([]string{}, sets...), "updated_at = NOW()")
	}
	args := append(append([]interface{}{}, u.args...), ids)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = ANY($%d)", table, strings.Join(sets, ", "), len(args))
	return sql, args
}
