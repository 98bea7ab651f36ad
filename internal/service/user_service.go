package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/dto"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/utils"
)

// userService implements UserService interface
type userService struct {
	userRepo      repository.UserRepository
	refreshTokens RefreshTokenService
	cache         *PrincipalCache
	audit         AuditService
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokens RefreshTokenService,
	cache *PrincipalCache,
	audit AuditService,
) UserService {
	return &userService{
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		cache:         cache,
		audit:         audit,
	}
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get user")
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		return nil, translate(err, "failed to get user")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, translate(err, "failed to list users")
	}
	return users, nil
}

func (s *userService) ListActive(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, translate(err, "failed to list users")
	}
	return users, nil
}

func (s *userService) CountActive(ctx context.Context) (int64, error) {
	n, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return 0, translate(err, "failed to count users")
	}
	return n, nil
}

// Update applies the non-nil fields of req. Only admins may change roles.
func (s *userService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest, actor domain.Actor) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get user")
	}

	previousEmail := user.Email
	var changes []string

	if req.Email != nil {
		email := utils.SanitizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, translate(err, "failed to check email")
			}
			if exists {
				return nil, fmt.Errorf("update user %d: %w", id, ErrDuplicateEmail)
			}
			user.Email = email
			changes = append(changes, "email")
		}
	}

	if req.Nickname != nil && *req.Nickname != user.Nickname {
		exists, err := s.userRepo.ExistsByNickname(ctx, *req.Nickname)
		if err != nil {
			return nil, translate(err, "failed to check nickname")
		}
		if exists {
			return nil, fmt.Errorf("update user %d: %w", id, ErrDuplicateNickname)
		}
		user.Nickname = *req.Nickname
		changes = append(changes, "nickname")
	}

	if req.Name != nil {
		name := *req.Name
		user.Name = &name
		changes = append(changes, "name")
	}

	if req.Role != nil && domain.Role(*req.Role) != user.Role {
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("role change requires admin: %w", ErrForbidden)
		}
		role := domain.Role(*req.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, ErrBadRequest)
		}
		user.Role = role
		changes = append(changes, "role")
	}

	user.UpdatedBy = actor.Name
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, translate(err, "failed to update user")
	}

	s.cache.Evict(previousEmail)
	s.audit.Record(ctx, actor, domain.ActionUpdate, domain.EntityUser, &user.ID,
		"updated fields: "+strings.Join(changes, ","))

	return user, nil
}

// Delete soft-deletes a user and revokes their refresh tokens
func (s *userService) Delete(ctx context.Context, id int64, actor domain.Actor) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err, "failed to get user")
	}
	if user.Deleted {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	user.Deleted = true
	user.UpdatedBy = actor.Name
	if err := s.userRepo.Update(ctx, user); err != nil {
		return translate(err, "failed to delete user")
	}

	if _, err := s.refreshTokens.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	s.cache.Evict(user.Email)
	s.audit.Record(ctx, actor, domain.ActionDelete, domain.EntityUser, &user.ID, "user soft-deleted")

	return nil
}

// Restore clears the deleted flag of a user
func (s *userService) Restore(ctx context.Context, id int64, actor domain.Actor) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to get user")
	}
	if !user.Deleted {
		return user, nil
	}

	user.Deleted = false
	user.UpdatedBy = actor.Name
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, translate(err, "failed to restore user")
	}

	s.audit.Record(ctx, actor, domain.ActionRestore, domain.EntityUser, &user.ID, "user restored")

	return user, nil
}
