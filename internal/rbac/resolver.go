package rbac

import (
	"context"
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

// ResolverRepository is the data access the resolver needs: a set-membership
// test over the union of the permission sets of all roles assigned to a user.
type ResolverRepository interface {
	UserHasPermission(userID int64, perm PermissionName) (bool, error)
}

// Resolver answers "may this principal do X". An inactive principal has zero
// effective permissions regardless of role membership; an unknown permission
// name evaluates to false and is not an error.
type Resolver struct {
	repo   ResolverRepository
	logger *slog.Logger
}

func NewResolver(repo ResolverRepository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// HasPermission checks principal against perm, consulting the request-scoped
// cache in ctx when present. Repository failures surface as StorageError.
func (r *Resolver) HasPermission(ctx context.Context, principal Principal, perm PermissionName) (bool, error) {
	if !principal.IsActive {
		return false, nil
	}

	cache := CacheFromContext(ctx)
	if allowed, ok := cache.get(principal.ID, perm); ok {
		return allowed, nil
	}

	allowed, err := r.repo.UserHasPermission(principal.ID, perm)
	if err != nil {
		r.logger.Error("permission lookup failed", "user_id", principal.ID, "permission", perm, "error", err)
		return false, internal.NewStorageError("failed to resolve permission", err)
	}

	cache.put(principal.ID, perm, allowed)
	return allowed, nil
}

// Require is HasPermission hardened into a guard: it returns a ForbiddenError
// when the principal lacks perm, so services can gate an operation in one call.
func (r *Resolver) Require(ctx context.Context, principal Principal, perm PermissionName) error {
	allowed, err := r.HasPermission(ctx, principal, perm)
	if err != nil {
		return err
	}
	if !allowed {
		r.logger.Warn("access denied: missing permission", "user_id", principal.ID, "permission", perm)
		return internal.NewForbiddenError("missing permission: "+string(perm), internal.ErrCodeMissingPermission)
	}
	return nil
}
