package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Dialect names reported by the supported drivers.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr returns a "column matches ?" condition. Postgres uses ILIKE;
// SQLite lowers the column and expects a lowered pattern from ContainsPattern.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column)
	}
	return fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, column)
}

// ContainsPattern builds a substring pattern for CaseInsensitiveLikeExpr. LIKE wildcards
// in term are escaped.
func ContainsPattern(conn *gorm.DB, term string) string {
	term = likeEscaper.Replace(term)
	if IsSQLite(conn) {
		term = strings.ToLower(term)
	}
	return "%" + term + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
