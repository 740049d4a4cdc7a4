package auth

import (
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/model"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the token-issuance collaborator: it registers and logs in
// users against the same Authority the hub verifies handshake credentials
// with, so both surfaces agree on who a user is.
type Service struct {
	repo      Repository
	authority *internaljwt.Authority
	now       func() time.Time
}

func New(repo Repository, authority *internaljwt.Authority) *Service {
	return &Service{
		repo:      repo,
		authority: authority,
		now:       time.Now,
	}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)
	name := strings.TrimSpace(params.Name)

	if email == "" || password == "" || name == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return AuthResult{}, newError(ErrorCodeConflict, "email already registered", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to check existing user", err)
	}

	newUser, err := internaljwt.NewUser(internaljwt.RegisterUser{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to prepare user", err)
	}
	newUser.Id = uuid.NewString()

	user := model.UserItem{
		UserID:       newUser.Id,
		Email:        email,
		Name:         name,
		PasswordHash: newUser.PasswordHash,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	token, err := s.authority.IssueToken(newUser, 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}

	return AuthResult{
		User:   user,
		Tokens: internaljwt.TokenResponse{AccessToken: token},
	}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)

	if email == "" || password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	if !internaljwt.ValidatePassword(user.PasswordHash, password) {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	token, err := s.authority.IssueToken(internaljwt.User{
		Id:    user.UserID,
		Email: user.Email,
	}, 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}

	return AuthResult{
		User:   user,
		Tokens: internaljwt.TokenResponse{AccessToken: token},
	}, nil
}

func (s *Service) Me(ctx context.Context, identity string) (model.UserItem, error) {
	email := normalizeEmail(identity)
	if email == "" {
		return model.UserItem{}, newError(ErrorCodeUnauthorized, "invalid user identity", nil)
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	return user, nil
}

// IdentityFromAuthorizationHeader extracts the verified identity from a
// Bearer header, using the shared Authority.
func (s *Service) IdentityFromAuthorizationHeader(header string) (string, error) {
	authHeader := strings.TrimSpace(header)
	if authHeader == "" {
		return "", newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", newError(ErrorCodeUnauthorized, "invalid authorization header format", nil)
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	identity, err := s.authority.Verify(token)
	if err != nil {
		return "", newError(ErrorCodeUnauthorized, "invalid token", err)
	}

	return identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
