package mysql

import (
	"context"
	"strings"

	"fixie/internal/core"
	"fixie/internal/database"
)

func detectDialect(ctx context.Context, q database.Conn) (core.Dialect, string, error) {
	var varName, comment string

	err := q.QueryRowContext(ctx, "SHOW VARIABLES LIKE 'version_comment'").Scan(&varName, &comment)
	if err != nil {
		return "", "", err
	}

	comment = strings.ToLower(comment)

	switch {
	case strings.Contains(comment, "mariadb"):
		return core.DialectMariaDB, getVersion(ctx, q), nil
	case strings.Contains(comment, "tidb"):
		return core.DialectTiDB, getVersion(ctx, q), nil
	default:
		return core.DialectMySQL, getVersion(ctx, q), nil
	}
}

func getVersion(ctx context.Context, q database.Conn) string {
	var version string
	_ = q.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version)
	if idx := strings.Index(version, "-"); idx > 0 {
		version = version[:idx]
	}
	return version
}
