package services

import (
	"strings"

	"gatehouse/internal/auth"
	"gatehouse/internal/constants"
	"gatehouse/internal/database"
	"gatehouse/internal/logger"
	"gatehouse/internal/token"
)

// UserService implements account registration and login.
type UserService struct {
	users      *database.UserStore
	codec      *token.Codec
	bcryptCost int
	logger     *logger.Logger

	// dummyHash is compared against when no account matches the login
	// email, so the unknown-email path burns the same bcrypt work as a
	// wrong password and cannot be told apart by response timing.
	dummyHash string
}

// NewUserService creates the account service.
func NewUserService(users *database.UserStore, codec *token.Codec, bcryptCost int, log *logger.Logger) *UserService {
	dummyHash, err := auth.HashPassword("gatehouse-timing-equalizer", bcryptCost)
	if err != nil {
		// bcrypt only fails on out-of-range cost, which config validation
		// rejects before this point.
		log.Error("Users: failed to prepare dummy hash: %v", err)
	}
	return &UserService{
		users:      users,
		codec:      codec,
		bcryptCost: bcryptCost,
		logger:     log,
		dummyHash:  dummyHash,
	}
}

// Register creates a new account with the user role and returns it with
// a freshly issued credential.
func (s *UserService) Register(email, name, password string) (*auth.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" || !strings.Contains(email, "@") {
		return nil, "", ErrInvalidRequest
	}
	if len(password) < constants.AuthMinPasswordLength {
		return nil, "", ErrAuthPasswordTooWeak
	}

	existing, err := s.users.FindUserByEmail(email)
	if err != nil {
		return nil, "", WrapInternalError(err)
	}
	if existing != nil {
		return nil, "", ErrAuthUserExists
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", WrapInternalError(err)
	}

	user, err := s.users.CreateUser(email, name, hash, constants.RoleUser)
	if err != nil {
		return nil, "", WrapInternalError(err)
	}

	credential, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, "", WrapInternalError(err)
	}

	s.logger.Info("Users: registered %s (id %d)", user.Email, user.ID)
	return user, credential, nil
}

// Login verifies credentials and issues a bearer credential. An unknown
// email and a wrong password produce the same error so accounts cannot be
// enumerated through the login endpoint.
func (s *UserService) Login(email, password string) (*auth.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	rec, err := s.users.FindUserByEmail(email)
	if err != nil {
		return nil, "", WrapInternalError(err)
	}
	if rec == nil {
		_ = auth.VerifyPassword(password, s.dummyHash)
		return nil, "", ErrAuthInvalidCredentials
	}
	if err := auth.VerifyPassword(password, rec.PasswordHash); err != nil {
		return nil, "", ErrAuthInvalidCredentials
	}

	credential, err := s.codec.Issue(rec.ID)
	if err != nil {
		return nil, "", WrapInternalError(err)
	}

	s.logger.Info("Users: login %s (id %d)", rec.Email, rec.ID)
	return &rec.User, credential, nil
}

// GetByID returns the account with the given ID.
func (s *UserService) GetByID(id int64) (*auth.User, error) {
	user, err := s.users.FindUserByID(id)
	if err != nil {
		return nil, WrapInternalError(err)
	}
	if user == nil {
		return nil, ErrAuthUserNotFound
	}
	return user, nil
}
