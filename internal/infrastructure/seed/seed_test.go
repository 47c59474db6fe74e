package seed

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"clinic-booking/config"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeederIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Subject{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	subjectRepo := repository.NewSubjectRepository()
	userRepo := repository.NewUserRepository()
	seeder := NewSeeder(db, log, subjectRepo, userRepo)
	cfg := config.SeedConfig{AdminUsername: "admin", AdminPassword: "admin123"}

	require.NoError(t, seeder.Run(context.Background(), cfg))
	require.NoError(t, seeder.Run(context.Background(), cfg))

	subjects, err := subjectRepo.FindAll(db)
	require.NoError(t, err)
	assert.Len(t, subjects, len(entity.DefaultSubjects))

	var users []entity.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("admin123")))
}

func TestSeederKeepsExistingCatalog(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Subject{}))

	subjectRepo := repository.NewSubjectRepository()
	require.NoError(t, subjectRepo.Create(db, &entity.Subject{Title: "Acne"}))

	log := logrus.New()
	log.SetOutput(io.Discard)
	seeder := NewSeeder(db, log, subjectRepo, repository.NewUserRepository())

	require.NoError(t, seeder.Run(context.Background(), config.SeedConfig{AdminUsername: "root", AdminPassword: "pw"}))

	count, err := subjectRepo.Count(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
