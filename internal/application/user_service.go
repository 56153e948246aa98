package application

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
)

// UserStore captures the persistence interactions for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	ListUsers(ctx context.Context, role persistence.Role) ([]persistence.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService manages accounts. Only admins mutate accounts; users can read
// their own profile.
type UserService struct {
	users       UserStore
	idGenerator func() string
	hash        func(password string) (string, error)
	logger      *slog.Logger
}

// NewUserService wires dependencies for account operations.
func NewUserService(users UserStore, idGenerator func() string, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		hash:        HashPassword,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) validate(input UserInput, creating bool) *ValidationError {
	vErr := &ValidationError{}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		vErr.add("email", "invalid email address")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if !input.Role.Valid() {
		vErr.add("role", "unknown role")
	}
	if creating && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if input.Role == persistence.RoleFranchisee && strings.TrimSpace(input.MPKNumber) == "" {
		vErr.add("mpk_number", "franchisees require an MPK number")
	}
	return vErr
}

// CreateUser registers a new account.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if !params.Principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}
	if vErr := s.validate(params.Input, true); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hash(params.Input.Password)
	if err != nil {
		return User{}, err
	}

	record := persistence.User{
		ID:           s.idGenerator(),
		Email:        params.Input.Email,
		DisplayName:  strings.TrimSpace(params.Input.DisplayName),
		Phone:        strings.TrimSpace(params.Input.Phone),
		Role:         params.Input.Role,
		PasswordHash: hash,
		MPKNumber:    strings.TrimSpace(params.Input.MPKNumber),
		StoreAddress: strings.TrimSpace(params.Input.StoreAddress),
	}
	if err := s.users.CreateUser(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrAlreadyExists) {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}

	created, err := s.users.GetUser(ctx, record.ID)
	if err != nil {
		return User{}, err
	}

	serviceLogger(ctx, s.logger, "UserService", "CreateUser").InfoContext(ctx,
		"user created", "user_id", created.ID, "role", created.Role)
	return userView(created), nil
}

// UpdateUser rewrites account attributes. An empty password keeps the
// current one.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if !params.Principal.IsAdmin() {
		return User{}, ErrUnauthorized
	}

	current, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	if vErr := s.validate(params.Input, false); vErr.HasErrors() {
		return User{}, vErr
	}

	current.Email = params.Input.Email
	current.DisplayName = strings.TrimSpace(params.Input.DisplayName)
	current.Phone = strings.TrimSpace(params.Input.Phone)
	current.Role = params.Input.Role
	current.MPKNumber = strings.TrimSpace(params.Input.MPKNumber)
	current.StoreAddress = strings.TrimSpace(params.Input.StoreAddress)
	if params.Input.Password != "" {
		if len(params.Input.Password) < 8 {
			vErr := &ValidationError{}
			vErr.add("password", "password must be at least 8 characters")
			return User{}, vErr
		}
		hash, err := s.hash(params.Input.Password)
		if err != nil {
			return User{}, err
		}
		current.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, current); err != nil {
		if errors.Is(err, persistence.ErrAlreadyExists) {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}

	updated, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, err
	}
	return userView(updated), nil
}

// GetUser returns an account visible to the principal.
func (s *UserService) GetUser(ctx context.Context, principal Principal, id string) (User, error) {
	if !principal.IsAdmin() && principal.UserID != id {
		return User{}, ErrUnauthorized
	}
	record, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return userView(record), nil
}

// ListUsers returns accounts, optionally restricted to one role.
func (s *UserService) ListUsers(ctx context.Context, principal Principal, role persistence.Role) ([]User, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	records, err := s.users.ListUsers(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(records))
	for _, r := range records {
		out = append(out, userView(r))
	}
	return out, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, id string) error {
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
