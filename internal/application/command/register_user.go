package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/internal/domain/user"
	"github.com/curiolab/curio-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates a learner account with a hashed password and issues an access token.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains registration input.
type RegisterUserCommand struct {
	Email    string
	Password string
}

// RegisterUserResult contains the new account identity and token.
type RegisterUserResult struct {
	UserID string
	Email  string
	Token  string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	repo   user.Repository
	hasher PasswordHasher
	issuer TokenIssuer
	log    *logger.Logger
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(repo user.Repository, hasher PasswordHasher, issuer TokenIssuer, log *logger.Logger) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		log:    log,
	}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := user.ValidateCredentials(cmd.Email, cmd.Password); err != nil {
		return nil, err
	}

	email := user.NormalizeEmail(cmd.Email)

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_user: hash password: %w", err)
	}

	account := &user.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.repo.Create(ctx, account); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, shared.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("register_user: create account: %w", err)
	}

	token, err := h.issuer.Issue(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("register_user: issue token: %w", err)
	}

	h.log.Info("account registered", logger.UserID(account.ID))

	return &RegisterUserResult{
		UserID: account.ID,
		Email:  account.Email,
		Token:  token,
	}, nil
}
