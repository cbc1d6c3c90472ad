package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/repository"
)

const createUserOperation = "user_create"

// UserService owns account creation.
type UserService struct {
	hasher          auth.PasswordHasher
	users           repository.UserRepository
	dispatcher      events.Dispatcher
	metrics         *observability.Metrics
	logger          *zap.Logger
	emailConstraint string
	coarse          bool
}

// UserDependencies encapsulates collaborators for the user service.
type UserDependencies struct {
	Hasher     auth.PasswordHasher
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(cfg config.UsersConfig, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		hasher:          deps.Hasher,
		users:           deps.UserRepo,
		dispatcher:      deps.Dispatcher,
		metrics:         deps.Metrics,
		logger:          logger,
		emailConstraint: cfg.EmailConstraint,
		coarse:          cfg.CoarseQueryErrors,
	}
}

// CreateUser hashes the password and inserts one user row.
//
// A hashing failure is returned as an error and nothing is stored. Storage
// failures are reported inside the result, never as an error.
func (s *UserService) CreateUser(ctx context.Context, input domain.UserCreateInput) (*domain.CreateUserResult, error) {
	hash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		s.metrics.RecordOutcome(createUserOperation, "HASH_FAILED")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		code := s.classify(err)
		s.metrics.RecordOutcome(createUserOperation, string(code))
		s.logger.Warn("user create failed", zap.String("code", string(code)), zap.Error(err))
		return domain.CreateUserFailed(code, err.Error()), nil
	}

	s.metrics.RecordOutcome(createUserOperation, "CREATED")
	s.logger.Debug("user created", zap.Int64("user_id", user.ID))
	s.publishCreated(ctx, user)

	return domain.CreateUserSucceeded(user.View()), nil
}

// classify maps a storage failure onto the public error codes.
func (s *UserService) classify(err error) domain.UserErrorCode {
	storageErr, ok := repository.AsStorageError(err)
	if !ok {
		return domain.UserErrorCodeUnknown
	}

	if s.coarse {
		if storageErr.IsQueryLevel() {
			return domain.UserErrorCodeEmailTaken
		}
		return domain.UserErrorCodeUnknown
	}

	if storageErr.Kind != repository.KindConstraintViolation {
		return domain.UserErrorCodeUnknown
	}
	if s.emailConstraint != "" && storageErr.Constraint == s.emailConstraint {
		return domain.UserErrorCodeEmailTaken
	}
	// users.email is the only unique column; an unnamed unique violation is the email.
	if storageErr.Constraint == "" && storageErr.IsUniqueViolation() {
		return domain.UserErrorCodeEmailTaken
	}
	return domain.UserErrorCodeUnknown
}

func (s *UserService) publishCreated(ctx context.Context, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(events.EventUserCreated, user.ID, events.UserCreatedPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish user_created failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}
