package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrSubjectExists   = errors.New("subject already exists")
)

type SubjectUsecase interface {
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	ListSubjects(ctx context.Context) (*dto.SubjectListResponse, error)
	DeleteSubject(ctx context.Context, id int64) error
}

type subjectUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	subjectRepo     repository.SubjectRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewSubjectUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	subjectRepo repository.SubjectRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) SubjectUsecase {
	return &subjectUsecase{
		db:              db,
		log:             log,
		subjectRepo:     subjectRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

func (u *subjectUsecase) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	subject := &entity.Subject{Title: strings.TrimSpace(req.Title)}
	if err := u.subjectRepo.Create(tx, subject); err != nil {
		if isDuplicateKeyError(err, "title") {
			return nil, ErrSubjectExists
		}
		u.log.Warnf("Failed to create subject: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller, entity.AuditActionSubjectCreate, "subject", subject.ID,
		map[string]interface{}{"title": subject.Title}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.SubjectToResponse(subject), nil
}

func (u *subjectUsecase) ListSubjects(ctx context.Context) (*dto.SubjectListResponse, error) {
	subjects, err := u.subjectRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all subjects: %+v", err)
		return nil, err
	}

	return &dto.SubjectListResponse{
		Subjects: converter.SubjectsToResponses(subjects),
		Total:    len(subjects),
	}, nil
}

// DeleteSubject removes a subject; appointments that referenced it keep their
// slot and lose the subject.
func (u *subjectUsecase) DeleteSubject(ctx context.Context, id int64) error {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	subject, err := u.subjectRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find subject %d: %+v", id, err)
		return err
	}
	if subject == nil {
		return ErrSubjectNotFound
	}

	detached, err := u.appointmentRepo.ClearSubject(tx, id)
	if err != nil {
		u.log.Warnf("Failed to detach subject %d from appointments: %+v", id, err)
		return err
	}

	if _, err := u.subjectRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete subject %d: %+v", id, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, &caller, entity.AuditActionSubjectDelete, "subject", id,
		map[string]interface{}{"title": subject.Title, "detached_appointments": detached}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
