package postgres

import (
	"fmt"

	"github.com/billforge/billforge/internal/types"
)

// placeholderClause renders e.g. " AND workspace_id = $3" for the n-th arg
func placeholderClause(prefix string, n int) string {
	return fmt.Sprintf("%s$%d", prefix, n)
}

// applyPagination appends LIMIT/OFFSET from the query filter
func applyPagination(query string, args []interface{}, filter *types.QueryFilter) (string, []interface{}) {
	args = append(args, filter.GetLimit())
	query += placeholderClause(" LIMIT ", len(args))
	args = append(args, filter.GetOffset())
	query += placeholderClause(" OFFSET ", len(args))
	return query, args
}
