package domain

import (
	"context"
	"errors"
	"time"
)

// User represents a system user.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

// Role is a user's access profile.
type Role string

const (
	// RoleAdministrator has full access to all operations.
	RoleAdministrator Role = "administrator"

	// RoleGerente runs the store: posts, reverses, closes days and
	// approves closing corrections, but does not manage accounts or users.
	RoleGerente Role = "gerente"

	// RoleVendedor records sales at the counter. Cannot reverse, close
	// or approve corrections.
	RoleVendedor Role = "vendedor"
)

// Operation is a capability the core checks once at each entry point,
// replacing scattered profile-string comparisons.
type Operation string

const (
	OpPostTransaction    Operation = "transaction.post"
	OpReverseTransaction Operation = "transaction.reverse"
	OpCloseDay           Operation = "closing.close"
	OpApproveCorrection  Operation = "closing.approve_correction"
	OpManageAccounts     Operation = "account.manage"
	OpManageUsers        Operation = "user.manage"
	OpManageRegistry     Operation = "registry.manage"
	OpViewReports        Operation = "report.view"
)

var roleOperations = map[Role]map[Operation]bool{
	RoleAdministrator: {
		OpPostTransaction:    true,
		OpReverseTransaction: true,
		OpCloseDay:           true,
		OpApproveCorrection:  true,
		OpManageAccounts:     true,
		OpManageUsers:        true,
		OpManageRegistry:     true,
		OpViewReports:        true,
	},
	RoleGerente: {
		OpPostTransaction:    true,
		OpReverseTransaction: true,
		OpCloseDay:           true,
		OpApproveCorrection:  true,
		OpViewReports:        true,
	},
	RoleVendedor: {
		OpPostTransaction: true,
		OpViewReports:     true,
	},
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	_, ok := roleOperations[r]
	return ok
}

// Can reports whether the role is allowed to perform op.
func (r Role) Can(op Operation) bool {
	return roleOperations[r][op]
}

// Authorize returns ErrInsufficientRole unless the user is active and the
// role allows the operation.
func (u *User) Authorize(op Operation) error {
	if u == nil || !u.Active {
		return ErrUnauthorized
	}

	if !u.Role.Can(op) {
		return ErrInsufficientRole
	}

	return nil
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInsufficientRole   = errors.New("insufficient role for this operation")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
)

type userContextKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}
