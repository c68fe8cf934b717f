package review

import (
	"database/sql"

	"github.com/gitpal-dev/gitpal/review/internal/store"
)

// InitSchema creates the runs, issues, and fixes tables.
func InitSchema(db *sql.DB) error {
	return store.Init(db)
}
