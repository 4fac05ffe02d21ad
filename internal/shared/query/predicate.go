package query

import (
	"fmt"
	"sort"
	"strings"

	"shop-backend/internal/shared/apperror"
)

// Op is a filter operator.
type Op string

const (
	OpEq     Op = "eq"
	OpNeq    Op = "neq"
	OpGte    Op = "gte"
	OpLte    Op = "lte"
	OpILike  Op = "ilike"
	OpIn     Op = "in"
	OpIsNull Op = "is_null"
)

// Predicate is a single filter over a public field name.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

func Eq(field string, v interface{}) Predicate  { return Predicate{Field: field, Op: OpEq, Value: v} }
func Neq(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpNeq, Value: v} }
func Gte(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v interface{}) Predicate { return Predicate{Field: field, Op: OpLte, Value: v} }
func ILike(field string, v string) Predicate    { return Predicate{Field: field, Op: OpILike, Value: v} }
func In(field string, v interface{}) Predicate  { return Predicate{Field: field, Op: OpIn, Value: v} }
func IsNull(field string, null bool) Predicate {
	return Predicate{Field: field, Op: OpIsNull, Value: null}
}

// Schema is the allow-list a resource exposes to list queries.
type Schema struct {
	// Columns maps public filter names to SQL column expressions.
	Columns map[string]string
	// Search lists the SQL expressions matched by free-text search.
	Search []string
	// Sorts maps public sort keys to SQL column expressions.
	Sorts       map[string]string
	DefaultSort string
	// TieBreaker keeps pagination stable when sort values repeat.
	TieBreaker string
}

// Filter is a compiled WHERE clause with its positional arguments.
type Filter struct {
	Clause string
	Args   []interface{}
}

// Where compiles search and predicates into a WHERE clause.
// An empty result yields an empty Clause.
func (s *Schema) Where(search string, preds ...Predicate) (Filter, error) {
	var (
		conds []string
		args  []interface{}
	)

	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if search = strings.TrimSpace(search); search != "" && len(s.Search) > 0 {
		ph := next("%" + escapeLike(search) + "%")
		parts := make([]string, len(s.Search))
		for i, col := range s.Search {
			parts[i] = col + " ILIKE " + ph
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	for _, p := range preds {
		col, ok := s.Columns[p.Field]
		if !ok {
			return Filter{}, apperror.ErrInvalidQuery.WithDetails(map[string]interface{}{
				p.Field: "unknown filter field",
			})
		}

		switch p.Op {
		case OpEq:
			conds = append(conds, col+" = "+next(p.Value))
		case OpNeq:
			conds = append(conds, col+" <> "+next(p.Value))
		case OpGte:
			conds = append(conds, col+" >= "+next(p.Value))
		case OpLte:
			conds = append(conds, col+" <= "+next(p.Value))
		case OpILike:
			str, _ := p.Value.(string)
			conds = append(conds, col+" ILIKE "+next("%"+escapeLike(str)+"%"))
		case OpIn:
			conds = append(conds, col+" = ANY("+next(p.Value)+")")
		case OpIsNull:
			if null, _ := p.Value.(bool); null {
				conds = append(conds, col+" IS NULL")
			} else {
				conds = append(conds, col+" IS NOT NULL")
			}
		default:
			return Filter{}, apperror.ErrInvalidQuery.WithDetails(map[string]interface{}{
				p.Field: fmt.Sprintf("unsupported operator %q", p.Op),
			})
		}
	}

	if len(conds) == 0 {
		return Filter{Args: args}, nil
	}
	return Filter{Clause: "WHERE " + strings.Join(conds, " AND "), Args: args}, nil
}

// OrderBy resolves a sort key and direction against the allow-list.
func (s *Schema) OrderBy(sortBy, sortOrder string) (string, error) {
	if sortBy == "" {
		sortBy = s.DefaultSort
	}
	col, ok := s.Sorts[sortBy]
	if !ok {
		return "", apperror.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"sortBy": fmt.Sprintf("must be one of %s", strings.Join(s.sortKeys(), ", ")),
		})
	}

	dir := "DESC"
	switch strings.ToLower(sortOrder) {
	case "", "desc":
	case "asc":
		dir = "ASC"
	default:
		return "", apperror.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"sortOrder": "must be asc or desc",
		})
	}

	clause := "ORDER BY " + col + " " + dir
	if s.TieBreaker != "" && s.TieBreaker != col {
		clause += ", " + s.TieBreaker + " " + dir
	}
	return clause, nil
}

func (s *Schema) sortKeys() []string {
	keys := make([]string, 0, len(s.Sorts))
	for k := range s.Sorts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
