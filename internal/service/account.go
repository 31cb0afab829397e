package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
	"github.com/iliyamo/parking-reservation/internal/utils"
)

// AuthConfig holds the token and hashing settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Session is the token pair handed out on login and refresh.
type Session struct {
	User           *model.User
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// RegisterInput is a self-registration request.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Phone           string
	VehicleNumber   string
	VehicleType     string
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Username      string
	Email         string
	FullName      string
	Phone         string
	VehicleNumber string
	VehicleType   string
}

// AccountService manages users and their sessions.
type AccountService struct {
	base
	auth AuthConfig
}

func NewAccountService(d Deps, auth AuthConfig) *AccountService {
	return &AccountService{base: newBase(d), auth: auth}
}

// Register creates a regular user.  The role is always RoleUser.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	u, err := s.createUser(ctx, in, model.RoleUser)
	record("register", err)
	return u, err
}

// CreateAdmin creates an administrator account.  Used by the CLI.
func (s *AccountService) CreateAdmin(ctx context.Context, in RegisterInput) (*model.User, error) {
	u, err := s.createUser(ctx, in, model.RoleAdmin)
	record("create_admin", err)
	return u, err
}

func (s *AccountService) createUser(ctx context.Context, in RegisterInput, role string) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: All required fields must be filled!", ErrInvalidInput)
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	hash, err := utils.HashPassword(in.Password, s.auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	vt := strings.TrimSpace(in.VehicleType)
	if vt == "" {
		vt = model.DefaultVehicleType
	}
	u := &model.User{
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(in.FullName),
		Phone:         strings.TrimSpace(in.Phone),
		Role:          role,
		Balance:       decimal.Zero,
		VehicleNumber: strings.ToUpper(strings.TrimSpace(in.VehicleNumber)),
		VehicleType:   vt,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, userTaken(err)
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Info("user created")
	return u, nil
}

func userTaken(err error) error {
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailTaken
	}
	return err
}

// Login verifies username and password and opens a session.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	sess, err := s.login(ctx, strings.TrimSpace(username), password)
	record("login", err)
	return sess, err
}

func (s *AccountService) login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: All required fields must be filled!", ErrInvalidInput)
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, s.store, u)
}

// Refresh exchanges a refresh token for a new pair.  The old token is
// revoked.
func (s *AccountService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := utils.HashRefreshRaw(raw)

	var sess *Session
	err := s.store.InTx(ctx, func(r Repo) error {
		t, err := r.GetRefreshToken(ctx, hash)
		if err != nil {
			return notFound(err, ErrInvalidRefreshToken)
		}
		// refresh tokens are minted on the wall clock
		if !t.Usable(time.Now().UTC()) {
			return ErrInvalidRefreshToken
		}
		if err := r.RevokeRefreshToken(ctx, hash); err != nil {
			return err
		}
		u, err := r.GetUserByID(ctx, t.UserID)
		if err != nil {
			return notFound(err, ErrInvalidRefreshToken)
		}
		sess, err = s.issue(ctx, r, u)
		return err
	})
	record("refresh", err)
	return sess, err
}

func (s *AccountService) issue(ctx context.Context, r TokenRepo, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.auth.JWTSecret, u.ID, u.Role, s.auth.AccessTTLMin)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.auth.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := r.StoreRefreshToken(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{
		User:           u,
		AccessToken:    access.Token,
		AccessExpires:  access.Exp,
		RefreshToken:   refresh.Raw,
		RefreshExpires: refresh.Exp,
	}, nil
}

// Logout revokes every refresh token of the user.
func (s *AccountService) Logout(ctx context.Context, userID uint64) error {
	err := s.store.RevokeAllRefreshTokens(ctx, userID)
	record("logout", err)
	return err
}

// Profile loads the user.
func (s *AccountService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

// EditProfile replaces the editable profile fields.  Empty username or
// email keep their current values.
func (s *AccountService) EditProfile(ctx context.Context, userID uint64, in ProfileInput) (*model.User, error) {
	var u *model.User
	err := s.store.InTx(ctx, func(r Repo) error {
		var err error
		u, err = r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if v := strings.TrimSpace(in.Username); v != "" {
			u.Username = v
		}
		if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
			u.Email = v
		}
		u.FullName = strings.TrimSpace(in.FullName)
		u.Phone = strings.TrimSpace(in.Phone)
		u.VehicleNumber = strings.ToUpper(strings.TrimSpace(in.VehicleNumber))
		if v := strings.TrimSpace(in.VehicleType); v != "" {
			u.VehicleType = v
		}
		return userTaken(r.UpdateUserProfile(ctx, u))
	})
	record("edit_profile", err)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword checks the old password and stores a new hash.  All
// refresh tokens are revoked.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint64, oldPw, newPw, confirm string) error {
	err := s.changePassword(ctx, userID, oldPw, newPw, confirm)
	record("change_password", err)
	return err
}

func (s *AccountService) changePassword(ctx context.Context, userID uint64, oldPw, newPw, confirm string) error {
	if oldPw == "" || newPw == "" {
		return fmt.Errorf("%w: All required fields must be filled!", ErrInvalidInput)
	}
	return s.store.InTx(ctx, func(r Repo) error {
		u, err := r.LockUser(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if !utils.VerifyPassword(u.PasswordHash, oldPw) {
			return ErrIncorrectPassword
		}
		if newPw != confirm {
			return ErrPasswordMismatch
		}
		hash, err := utils.HashPassword(newPw, s.auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := r.UpdateUserPassword(ctx, userID, hash); err != nil {
			return err
		}
		return r.RevokeAllRefreshTokens(ctx, userID)
	})
}
