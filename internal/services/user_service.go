package services

import (
	"context"
	"strings"

	"github.com/smarttransit/bus-tracking-backend/internal/database"
	"github.com/smarttransit/bus-tracking-backend/internal/models"
	"github.com/smarttransit/bus-tracking-backend/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts
type UserService struct {
	users      *database.UserRepository
	activity   *ActivityService
	phones     *validator.PhoneValidator
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(users *database.UserRepository, activity *ActivityService, phones *validator.PhoneValidator, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		activity:   activity,
		phones:     phones,
		bcryptCost: bcryptCost,
	}
}

// parseTypeFilter turns an optional ?type= value into a filter
func parseTypeFilter(raw string) (*models.UserType, error) {
	if raw == "" {
		return nil, nil
	}
	userType, err := models.ParseUserType(raw)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	return &userType, nil
}

// List returns users, optionally of one type
func (s *UserService) List(ctx context.Context, typeFilter string) ([]models.User, error) {
	userType, err := parseTypeFilter(typeFilter)
	if err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, userType)
	if err != nil {
		return nil, Internal("Failed to load users", err)
	}
	return users, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("Failed to load user", err)
	}
	if user == nil {
		return nil, NotFound("User not found")
	}
	return user, nil
}

// Stats returns account counts, optionally of one type
func (s *UserService) Stats(ctx context.Context, typeFilter string) (*models.EntityCounts, error) {
	userType, err := parseTypeFilter(typeFilter)
	if err != nil {
		return nil, err
	}

	counts, err := s.users.Counts(ctx, userType)
	if err != nil {
		return nil, Internal("Failed to load user statistics", err)
	}
	return counts, nil
}

// Delete removes an account. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, userID int64, actorID *int64) error {
	if actorID != nil && *actorID == userID {
		return Validation("You cannot delete your own account")
	}

	found, err := s.users.Delete(ctx, userID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return &Error{Kind: KindConflict, Message: "User has reported locations; deactivate the account instead", Err: err}
		}
		return Internal("Failed to delete user", err)
	}
	if !found {
		return NotFound("User not found")
	}
	return nil
}

// Create is the administrator path: any user type may be created.
func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest, actorID *int64) (*models.User, error) {
	user, err := s.create(ctx, req, false)
	if err != nil {
		return nil, err
	}
	s.activity.LogUserCreated(ctx, actorID, user)
	return user, nil
}

// Register is the self-service path used by auth.register
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return s.create(ctx, req, true)
}

func (s *UserService) create(ctx context.Context, req *models.CreateUserRequest, selfService bool) (*models.User, error) {
	user, err := s.buildUser(req, selfService)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, user); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, Internal("Failed to create account", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &Error{Kind: conflictKindFor(database.ConstraintName(err)), Message: "An account with these details already exists", Err: err}
		}
		return nil, Internal("Failed to create account", err)
	}
	return user, nil
}

func (s *UserService) buildUser(req *models.CreateUserRequest, selfService bool) (*models.User, error) {
	userType := models.UserTypePassenger
	if req.UserType != "" {
		parsed, err := models.ParseUserType(req.UserType)
		if err != nil {
			return nil, Validation("%s", err.Error())
		}
		userType = parsed
	}
	if selfService && userType == models.UserTypeAdmin {
		return nil, Validation("Administrator accounts cannot be self-registered")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" || req.Password == "" {
		return nil, Validation("email, password and full_name are required")
	}
	if len(req.Password) < 6 {
		return nil, Validation("Password must be at least 6 characters")
	}

	user := &models.User{UserType: userType, Email: email, FullName: fullName}

	if strings.TrimSpace(req.Phone) != "" {
		phone, err := s.phones.Validate(req.Phone)
		if err != nil {
			return nil, Validation("Invalid phone number: %s", err.Error())
		}
		user.Phone = &phone
	}

	if userType == models.UserTypeDriver {
		license := strings.ToUpper(strings.TrimSpace(req.LicenseNumber))
		if license == "" {
			return nil, Validation("license_number is required for drivers")
		}
		user.LicenseNumber = &license
	}

	return user, nil
}

// checkUnique reports the first field that is already taken
func (s *UserService) checkUnique(ctx context.Context, user *models.User) error {
	exists, err := s.users.EmailExists(ctx, user.Email)
	if err != nil {
		return Internal("Failed to create account", err)
	}
	if exists {
		return NewError(KindEmailTaken, "Email already registered")
	}

	if user.Phone != nil {
		exists, err := s.users.PhoneExists(ctx, *user.Phone)
		if err != nil {
			return Internal("Failed to create account", err)
		}
		if exists {
			return NewError(KindPhoneTaken, "Phone number already registered")
		}
	}

	if user.LicenseNumber != nil {
		exists, err := s.users.LicenseExists(ctx, *user.LicenseNumber)
		if err != nil {
			return Internal("Failed to create account", err)
		}
		if exists {
			return NewError(KindLicenseTaken, "License number already registered")
		}
	}

	return nil
}

// conflictKindFor maps a unique constraint raced past checkUnique to its field
func conflictKindFor(constraint string) ErrorKind {
	switch {
	case strings.Contains(constraint, "email"):
		return KindEmailTaken
	case strings.Contains(constraint, "phone"):
		return KindPhoneTaken
	case strings.Contains(constraint, "license"):
		return KindLicenseTaken
	default:
		return KindConflict
	}
}
