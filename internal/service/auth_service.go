package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iliyamo/taskboard/internal/metrics"
	"github.com/iliyamo/taskboard/internal/model"
	"github.com/iliyamo/taskboard/internal/oauth"
	"github.com/iliyamo/taskboard/internal/queue"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/utils"
)

const minPasswordLength = 6

// UserStore is the credential store used by AuthService.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmailOrProvider(ctx context.Context, email, provider, providerID string) (*model.User, error)
	LinkProvider(ctx context.Context, id uint64, provider, providerID string, avatar *string) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID uint64, email string) (utils.AccessToken, error)
}

// RegisterInput is the payload of a password registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult carries the new session and the created account.
type RegisterResult struct {
	Token string
	User  *model.User
}

// LoginResult carries only the session token.
type LoginResult struct {
	Token string
}

// OAuthResult carries the session and the resolved account.
type OAuthResult struct {
	Token string
	User  *model.User
}

// AuthService implements password and OAuth authentication.
type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	bcryptCost int
	events     queue.Publisher
	metrics    metrics.Recorder
}

// NewAuthService wires the service.  A nil publisher or recorder disables
// that concern.
func NewAuthService(users UserStore, tokens TokenIssuer, bcryptCost int, events queue.Publisher, rec metrics.Recorder) *AuthService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, events: events, metrics: rec}
}

func (in RegisterInput) validate() error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case !strings.Contains(in.Email, "@"):
		return fmt.Errorf("%w: email must be a valid email address", ErrValidation)
	case len(in.Password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	return nil
}

// Register creates a password account and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *RegisterResult, err error) {
	defer func() { s.recordOutcome(metrics.EventRegister, err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	u := &model.User{Name: in.Name, Email: in.Email, PasswordHash: &hash}
	if err := s.users.Create(ctx, u); err != nil {
		// a concurrent registration won between the check and the insert
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("user registered", slog.Uint64("user_id", u.ID))
	publish(ctx, s.events, queue.ActivityEvent{Type: queue.UserRegistered, UserID: u.ID})
	return &RegisterResult{Token: tok.Token, User: u}, nil
}

// Login checks a password and returns a session token.  All credential
// failures produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	defer func() { s.recordOutcome(metrics.EventLogin, err) }()

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !u.HasPassword() || !utils.VerifyPassword(*u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok.Token}, nil
}

// ResolveOAuth maps a provider profile onto an account and signs it in.
// The account is found by email or by provider identity in one lookup,
// created when absent, and linked when it exists without a provider.  An
// account that already has a provider is never modified.
func (s *AuthService) ResolveOAuth(ctx context.Context, p oauth.Profile) (res *OAuthResult, err error) {
	defer func() { s.recordOutcome(metrics.EventOAuth, err) }()

	if p.Email == "" || p.Provider == "" || p.ProviderID == "" {
		return nil, fmt.Errorf("%w: incomplete oauth profile", ErrValidation)
	}

	u, err := s.users.FindByEmailOrProvider(ctx, p.Email, p.Provider, p.ProviderID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u, err = s.createOAuthUser(ctx, p)
	case err != nil:
		err = fmt.Errorf("lookup oauth user: %w", err)
	case !u.IsLinked():
		u, err = s.linkProvider(ctx, u, p)
	}
	if err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &OAuthResult{Token: tok.Token, User: u}, nil
}

func (s *AuthService) createOAuthUser(ctx context.Context, p oauth.Profile) (*model.User, error) {
	name := p.DisplayName()
	if name == "" {
		name = p.Email
	}
	u := &model.User{
		Name:       name,
		Email:      p.Email,
		Provider:   strPtr(p.Provider),
		ProviderID: strPtr(p.ProviderID),
		Avatar:     optional(p.Avatar),
	}
	err := s.users.Create(ctx, u)
	if err == nil {
		slog.Info("user created from oauth",
			slog.Uint64("user_id", u.ID),
			slog.String("provider", p.Provider),
		)
		publish(ctx, s.events, queue.ActivityEvent{Type: queue.UserRegistered, UserID: u.ID})
		return u, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	// A concurrent first login inserted the row; resolve to that account.
	winner, err := s.users.FindByEmailOrProvider(ctx, p.Email, p.Provider, p.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("lookup oauth user: %w", err)
	}
	if !winner.IsLinked() {
		return s.linkProvider(ctx, winner, p)
	}
	return winner, nil
}

func (s *AuthService) linkProvider(ctx context.Context, u *model.User, p oauth.Profile) (*model.User, error) {
	linked, err := s.users.LinkProvider(ctx, u.ID, p.Provider, p.ProviderID, optional(p.Avatar))
	if err != nil {
		return nil, fmt.Errorf("link provider: %w", err)
	}
	if linked {
		slog.Info("oauth provider linked",
			slog.Uint64("user_id", u.ID),
			slog.String("provider", p.Provider),
		)
		publish(ctx, s.events, queue.ActivityEvent{Type: queue.UserOAuthLinked, UserID: u.ID, Title: p.Provider})
	}
	fresh, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return fresh, nil
}

// Me returns the account of an authenticated caller.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) recordOutcome(event string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	s.metrics.RecordAuthEvent(event, outcome)
}
