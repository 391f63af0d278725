package command

import (
	"context"
	"fmt"

	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/internal/domain/user"
	"github.com/curiolab/curio-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN USER COMMAND
// Verifies credentials and issues an access token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
// ══════════════════════════════════════════════════════════════════════════════

// LoginUserCommand contains login input.
type LoginUserCommand struct {
	Email    string
	Password string
}

// LoginUserResult contains the issued token.
type LoginUserResult struct {
	UserID string
	Token  string
}

// LoginUserHandler handles the LoginUserCommand.
type LoginUserHandler struct {
	repo   user.Repository
	hasher PasswordHasher
	issuer TokenIssuer
	log    *logger.Logger
}

// NewLoginUserHandler creates a new LoginUserHandler.
func NewLoginUserHandler(repo user.Repository, hasher PasswordHasher, issuer TokenIssuer, log *logger.Logger) *LoginUserHandler {
	return &LoginUserHandler{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		log:    log,
	}
}

// Handle executes the login user command.
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginUserResult, error) {
	email := user.NormalizeEmail(cmd.Email)

	account, err := h.repo.FindByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login_user: find account: %w", err)
	}

	if err := h.hasher.Verify(account.PasswordHash, cmd.Password); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, err := h.issuer.Issue(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("login_user: issue token: %w", err)
	}

	h.log.Info("account logged in", logger.UserID(account.ID))

	return &LoginUserResult{UserID: account.ID, Token: token}, nil
}
