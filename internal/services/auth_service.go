package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUsernameRequired     = errors.New("username is required")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

const (
	demoUsername = "demoUser"
	demoPassword = "demo123"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo          repository.UserRepository
	log               *zap.Logger
	hashCost          int
	allowRegistration bool

	dummyOnce sync.Once
	dummyHash []byte
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithHashCost sets the bcrypt cost used for new hashes.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithRegistration enables or disables self-service signup.
func WithRegistration(allowed bool) AuthOption {
	return func(s *AuthService) { s.allowRegistration = allowed }
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, log *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:          userRepo,
		log:               log,
		hashCost:          bcrypt.DefaultCost,
		allowRegistration: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegistrationAllowed reports whether Signup accepts new users.
func (s *AuthService) RegistrationAllowed() bool {
	return s.allowRegistration
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a new user. Usernames are stored and matched exactly as
// given, so "bob" and "bob " are different accounts.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationDisabled
	}
	return s.createUser(input.Username, input.Password)
}

func (s *AuthService) createUser(username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrUsernameRequired
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to check username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		// lost a race against a concurrent signup
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		s.log.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	s.log.Info("user created", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user. An
// unknown username and a wrong password produce the same error, and both
// paths pay for one bcrypt comparison.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("timesheet-unknown-user"), s.hashCost)
		if err != nil {
			s.log.Error("failed to build dummy hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// ChangePassword replaces the user's password hash. Re-verifying the
// current password is the caller's job.
func (s *AuthService) ChangePassword(userID uint64, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePasswordHash(userID, string(hashedPassword)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.log.Error("failed to update password", zap.Uint64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info("password changed", zap.Uint64("user_id", userID))
	return nil
}

// ResetPassword sets a new password for the named user. Used by the admin CLI.
func (s *AuthService) ResetPassword(username, newPassword string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.ChangePassword(user.ID, newPassword); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListUsers returns all users ordered by username.
func (s *AuthService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// EnsureDemoUser creates the demo account when no user exists yet. It
// reports whether a user was created.
func (s *AuthService) EnsureDemoUser() (bool, error) {
	count, err := s.userRepo.Count()
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.createUser(demoUsername, demoPassword); err != nil {
		return false, err
	}
	return true, nil
}

// validatePassword enforces the length window. The upper bound is in
// bytes since bcrypt refuses anything longer than 72.
func validatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
