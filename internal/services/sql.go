package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// isDuplicateKey reports whether err is a MySQL unique-constraint
// violation (error 1062). Insert paths treat it as "the row already
// exists" rather than a fatal error.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

// orderKeyword maps a client-supplied sort order onto a SQL keyword,
// falling back to ascending for anything unrecognized.
func orderKeyword(sortOrder string) string {
	if strings.EqualFold(sortOrder, "desc") {
		return "DESC"
	}
	return "ASC"
}
