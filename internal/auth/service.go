package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	pkgAuth "github.com/angelmondragon/fooddiscount-backend/pkg/auth"
	"github.com/angelmondragon/fooddiscount-backend/pkg/auth/session"
	"github.com/angelmondragon/fooddiscount-backend/pkg/config"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Me(ctx context.Context, accountID uuid.UUID) (*MeResponse, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	EnterStore(ctx context.Context, actor access.Actor, currentAccessID string, storeID uuid.UUID) (*SessionResponse, error)
	SeedAdmin(ctx context.Context, email, password string) (created bool, err error)
}

type accountRepository interface {
	Create(ctx context.Context, dto accounts.CreateAccountDTO) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accountID uuid.UUID, accessID string) (string, error)
	Rotate(ctx context.Context, accountID uuid.UUID, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts       accountRepository
	Stores         access.StoreFinder
	SessionManager sessionManager
	Hasher         passwordHasher
	JWTConfig      config.JWTConfig
}

type service struct {
	accounts accountRepository
	stores   access.StoreFinder
	session  sessionManager
	hasher   passwordHasher
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store finder is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	return &service{
		accounts: params.Accounts,
		stores:   params.Stores,
		session:  params.SessionManager,
		hasher:   params.Hasher,
		jwtCfg:   params.JWTConfig,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	email := accounts.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	role := req.Role
	if role == "" {
		role = enums.AccountRoleCustomer
	}
	if !role.SelfRegistrable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be customer or store")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account, err := s.accounts.Create(ctx, accounts.CreateAccountDTO{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		if db.IsUniqueViolation(err, accounts.EmailConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	return s.openSession(ctx, account, nil)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	account, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account deactivated")
	}

	now := s.now()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	account.LastLoginAt = &now

	store, err := s.ownedStore(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, account, store)
}

func (s *service) Me(ctx context.Context, accountID uuid.UUID) (*MeResponse, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	store, err := s.ownedStore(ctx, account)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: accounts.FromModel(account), Store: summarize(store)}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	account, err := s.accounts.FindByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !account.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account deactivated")
	}

	newAccessID, refreshToken, err := s.session.Rotate(ctx, account.ID, req.AccessID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	token, err := s.mint(account, req.StoreID, newAccessID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: token, RefreshToken: refreshToken}, nil
}

// EnterStore issues an admin session scoped to storeID so store management
// endpoints act on that store.
func (s *service) EnterStore(ctx context.Context, actor access.Actor, currentAccessID string, storeID uuid.UUID) (*SessionResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	account, err := s.accounts.FindByID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	resp, err := s.openSession(ctx, account, store)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(currentAccessID) != "" {
		if err := s.session.Revoke(ctx, currentAccessID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke previous session")
		}
	}
	return resp, nil
}

// SeedAdmin makes sure the bootstrap admin account exists. An existing
// account with the email is left untouched.
func (s *service) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = accounts.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "admin email and password are required")
	}
	_, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup admin")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}
	_, err = s.accounts.Create(ctx, accounts.CreateAccountDTO{
		Email:        email,
		PasswordHash: hash,
		Role:         enums.AccountRoleAdmin,
	})
	if err != nil {
		if db.IsUniqueViolation(err, accounts.EmailConstraint) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return true, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	input := accounts.NormalizeEmail(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	account, err := s.accounts.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}

	valid, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return account, nil
}

// ownedStore returns the store of a store account, or nil when it has none yet.
func (s *service) ownedStore(ctx context.Context, account *models.Account) (*models.Store, error) {
	if account.Role != enums.AccountRoleStore {
		return nil, nil
	}
	store, err := s.stores.FindByOwner(ctx, account.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) openSession(ctx context.Context, account *models.Account, store *models.Store) (*SessionResponse, error) {
	var storeID *uuid.UUID
	if store != nil {
		id := store.ID
		storeID = &id
	}

	accessID := session.NewAccessID()
	token, err := s.mint(account, storeID, accessID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.session.Generate(ctx, account.ID, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &SessionResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         accounts.FromModel(account),
		Store:        summarize(store),
	}, nil
}

func (s *service) mint(account *models.Account, storeID *uuid.UUID, accessID string) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		AccountID: account.ID,
		Role:      account.Role,
		StoreID:   storeID,
		JTI:       accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}
