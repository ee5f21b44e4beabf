package utils

import (
	"fmt"
	"strings"
)

// WhereBuilder gom điều kiện WHERE với placeholder $n cho pgx
type WhereBuilder struct {
	clauses []string
	args    []any
}

// Add thêm điều kiện; mỗi "?" trong clause được thay bằng $n kế tiếp
func (w *WhereBuilder) Add(clause string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

// Arg thêm argument không gắn với clause (LIMIT/OFFSET), trả về placeholder
func (w *WhereBuilder) Arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *WhereBuilder) Args() []any {
	return w.args
}

// SQL trả về "WHERE a AND b" hoặc chuỗi rỗng
func (w *WhereBuilder) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + JoinWithAnd(w.clauses)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern tạo pattern "%<s>%" cho ILIKE ... ESCAPE '\', wildcard trong input được escape
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}
