package seed

import (
	"context"
	"fmt"

	"clinic-booking/config"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder fills an empty database with the default subject catalog and the
// first admin account. Running it again changes nothing.
type Seeder struct {
	db          *gorm.DB
	log         *logrus.Logger
	subjectRepo repository.SubjectRepository
	userRepo    repository.UserRepository
}

func NewSeeder(db *gorm.DB, log *logrus.Logger, subjectRepo repository.SubjectRepository, userRepo repository.UserRepository) *Seeder {
	return &Seeder{
		db:          db,
		log:         log,
		subjectRepo: subjectRepo,
		userRepo:    userRepo,
	}
}

func (s *Seeder) Run(ctx context.Context, cfg config.SeedConfig) error {
	tx := s.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := s.seedSubjects(tx); err != nil {
		return err
	}
	if err := s.seedAdmin(tx, cfg); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

func (s *Seeder) seedSubjects(tx *gorm.DB) error {
	count, err := s.subjectRepo.Count(tx)
	if err != nil {
		return fmt.Errorf("failed to count subjects: %w", err)
	}
	if count > 0 {
		s.log.Infof("Subject catalog already has %d entries, skipping", count)
		return nil
	}

	for _, title := range entity.DefaultSubjects {
		if err := s.subjectRepo.Create(tx, &entity.Subject{Title: title}); err != nil {
			return fmt.Errorf("failed to create subject %q: %w", title, err)
		}
	}
	s.log.Infof("Seeded %d subjects", len(entity.DefaultSubjects))
	return nil
}

func (s *Seeder) seedAdmin(tx *gorm.DB, cfg config.SeedConfig) error {
	existing, err := s.userRepo.FindByUsername(tx, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("failed to find admin user: %w", err)
	}
	if existing != nil {
		s.log.Infof("User %q already exists, skipping", cfg.AdminUsername)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &entity.User{
		Username: cfg.AdminUsername,
		Password: string(hashedPassword),
		Role:     entity.RoleAdmin,
	}
	if err := s.userRepo.Create(tx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	s.log.Infof("Seeded admin user %q", cfg.AdminUsername)
	return nil
}
