package db

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHasTablePresent(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?")).
		WithArgs("ratings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	if !HasTable(mockDB, "ratings") {
		t.Error("HasTable() = false, want true")
	}
}

func TestHasTableMissing(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery("information_schema.tables").
		WithArgs("ratings").
		WillReturnError(sql.ErrNoRows)

	if HasTable(mockDB, "ratings") {
		t.Error("HasTable() = true, want false")
	}
}
