package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunPostgres builds statements with the postgres dialect without connecting
func dryRunPostgres(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=clinic dbname=clinic sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))
	return db, &statements
}

func TestDoctorRepositoryLocking(t *testing.T) {
	tests := []struct {
		name   string
		find   func(r *doctorRepository, db *gorm.DB) error
		suffix string
	}{
		{"delete path locks for update", func(r *doctorRepository, db *gorm.DB) error {
			_, err := r.FindByIDForUpdate(db, 7)
			return err
		}, "FOR UPDATE"},
		{"booking path takes a share lock", func(r *doctorRepository, db *gorm.DB) error {
			_, err := r.FindByIDForShare(db, 7)
			return err
		}, "FOR SHARE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, statements := dryRunPostgres(t)

			require.NoError(t, tt.find(&doctorRepository{}, db))

			require.Len(t, *statements, 1)
			assert.Contains(t, (*statements)[0], `FROM "doctors" WHERE id = $1`)
			assert.Regexp(t, tt.suffix+`$`, (*statements)[0])
		})
	}
}

func TestDoctorRepositoryPlainLookupDoesNotLock(t *testing.T) {
	db, statements := dryRunPostgres(t)

	_, err := (&doctorRepository{}).FindByID(db, 7)
	require.NoError(t, err)

	require.Len(t, *statements, 1)
	assert.NotContains(t, (*statements)[0], "FOR ")
}
