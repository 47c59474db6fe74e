package usecase

import (
	"context"
	"errors"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPhoneAlreadyExists = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.PatientResponse, error)
	LoginPatient(ctx context.Context, req *dto.PatientLoginRequest) (*dto.TokenResponse, error)
	LoginStaff(ctx context.Context, req *dto.StaffLoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.IdentityResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		patientRepo:  patientRepo,
		userRepo:     userRepo,
		auditService: auditService,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.PatientResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.patientRepo.FindByPhone(tx, req.Phone)
	if err != nil {
		u.log.Warnf("Failed to find patient by phone: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	patient := &entity.Patient{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: string(hashedPassword),
	}

	if err := u.patientRepo.Create(tx, patient); err != nil {
		if isDuplicateKeyError(err, "phone") {
			return nil, ErrPhoneAlreadyExists
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	actor := &entity.Identity{ID: patient.ID, Name: patient.Name, Role: entity.RolePatient}
	if err := u.auditService.LogCreate(ctx, tx, actor, entity.AuditActionPatientRegister, "patient", patient.ID,
		map[string]interface{}{"name": patient.Name, "phone": patient.Phone}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientToResponse(patient), nil
}

func (u *authUsecase) LoginPatient(ctx context.Context, req *dto.PatientLoginRequest) (*dto.TokenResponse, error) {
	patient, err := u.patientRepo.FindByPhone(u.db.WithContext(ctx), req.Phone)
	if err != nil {
		u.log.Warnf("Failed to find patient by phone: %+v", err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(patient.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, jwt.Subject{ID: patient.ID, Name: patient.Name, Role: string(entity.RolePatient)})
}

func (u *authUsecase) LoginStaff(ctx context.Context, req *dto.StaffLoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil || !user.Role.IsStaff() {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, jwt.Subject{ID: user.ID, Name: user.Username, Role: string(user.Role)})
}

// Logout revokes the caller's access token and, when given, its refresh token
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return err
	}
	owner := service.TokenOwner(string(caller.Role), caller.ID)

	if tokenID, ok := middleware.GetTokenIDFromContext(ctx); ok {
		if err := u.tokenStore.Delete(ctx, jwt.AccessToken, owner, tokenID); err != nil {
			u.log.Warnf("Failed to delete access token: %+v", err)
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil
	}
	if service.TokenOwner(claims.Role, claims.UserID) != owner {
		return nil
	}
	if err := u.tokenStore.Delete(ctx, jwt.RefreshToken, owner, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete refresh token: %+v", err)
		return err
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	owner := service.TokenOwner(claims.Role, claims.UserID)
	exists, err := u.tokenStore.Exists(ctx, jwt.RefreshToken, owner, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Rotation: a refresh token is single use
	if err := u.tokenStore.Delete(ctx, jwt.RefreshToken, owner, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	// Reload so renamed or removed accounts are reflected in the new tokens
	identity, err := u.findIdentity(ctx, entity.Role(claims.Role), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return u.issueTokens(ctx, jwt.Subject{ID: identity.ID, Name: identity.Name, Role: string(identity.Role)})
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.IdentityResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	identity, err := u.findIdentity(ctx, caller.Role, caller.ID)
	if err != nil {
		return nil, err
	}

	return &dto.IdentityResponse{
		ID:   identity.ID,
		Name: identity.Name,
		Role: string(identity.Role),
	}, nil
}

func (u *authUsecase) findIdentity(ctx context.Context, role entity.Role, id int64) (*entity.Identity, error) {
	db := u.db.WithContext(ctx)

	if role == entity.RolePatient {
		patient, err := u.patientRepo.FindByID(db, id)
		if err != nil {
			u.log.Warnf("Failed to find patient by ID: %+v", err)
			return nil, err
		}
		if patient == nil {
			return nil, ErrUserNotFound
		}
		return &entity.Identity{ID: patient.ID, Name: patient.Name, Role: entity.RolePatient}, nil
	}

	user, err := u.userRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || user.Role != role {
		return nil, ErrUserNotFound
	}
	return &entity.Identity{ID: user.ID, Name: user.Username, Role: user.Role}, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, sub jwt.Subject) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	owner := service.TokenOwner(sub.Role, sub.ID)
	if err := u.tokenStore.Save(ctx, jwt.AccessToken, owner, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}
	if err := u.tokenStore.Save(ctx, jwt.RefreshToken, owner, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:         sub.Role,
	}, nil
}
