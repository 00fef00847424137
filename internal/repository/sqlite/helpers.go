package sqlite

import "github.com/Masterminds/squirrel"

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func clampLimit(limit int) uint64 {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return uint64(limit)
}
