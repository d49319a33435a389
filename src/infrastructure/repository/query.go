package repository

import (
	"fmt"
	"strings"

	"resource-share/src/domain"
	"resource-share/src/security"
)

// conditions WHERE句とプレースホルダ引数を組み立てる
type conditions struct {
	clauses []string
	args    []interface{}
}

// bind 引数を追加し、そのプレースホルダ ($n) を返す
func (c *conditions) bind(value interface{}) string {
	c.args = append(c.args, value)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *conditions) add(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page LIMIT/OFFSETを付けたSQLと引数を返す。condの引数は変更しない
func (c *conditions) page(limit, offset int) (string, []interface{}) {
	args := append([]interface{}(nil), c.args...)
	if limit <= 0 {
		return "", args
	}
	args = append(args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// likePattern ILIKE用の部分一致パターン
func likePattern(search string) string {
	return "%" + security.EscapeForLike(search) + "%"
}

// rowScanner *sql.Row と *sql.Rows の共通部分
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}
