// Package auth verifies credentials against the account table using the
// pre-login AUTH role, which can read nothing else.
package auth

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"campus-server/internal/database"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
)

var (
	// ErrInvalidCredentials covers both an unknown login code and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInactiveAccount means the credentials were correct but the
	// account is deactivated. This is a required, user-visible distinction.
	ErrInactiveAccount = errors.New("account is inactive")
)

const accountQuery = "SELECT user_id, login_code, password_hash, role, status FROM campus.user_account WHERE login_code = $1"

// Login validates the credentials and returns the account record. The
// login code is upper-cased before lookup. Runs on the AUTH pool of the
// given session's executor.
func Login(ctx context.Context, exec *database.Executor, username, password string) (*schemas.UserAccount, error) {
	loginCode := strings.ToUpper(username)

	table := exec.Query(ctx, roles.RoleAuth, accountQuery, loginCode)
	if table.Message != "" {
		return nil, errors.New(table.Message)
	}
	if table.Empty() {
		return nil, ErrInvalidCredentials
	}

	hash := table.String(0, "password_hash")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if status := table.String(0, "status"); status != schemas.AccountStatusActive {
		return nil, ErrInactiveAccount
	}

	role, err := roles.Parse(table.String(0, "role"))
	if err != nil {
		log.WithError(err).Error("Account carries a role the application does not know")
		return nil, ErrInvalidCredentials
	}

	return &schemas.UserAccount{
		UserID:    table.Int(0, "user_id"),
		LoginCode: table.String(0, "login_code"),
		Role:      role,
		Status:    schemas.AccountStatusActive,
	}, nil
}
