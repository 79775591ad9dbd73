package services

import (
	"context"
	"errors"

	"realty_backend/internal/logger"
	"realty_backend/internal/models"
	"realty_backend/internal/repositories"
	"realty_backend/internal/services/dto"
	"realty_backend/pkg/apperrors"
)

// UserService owns profile management and the admin user directory.
type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// List is the admin directory: one page of users plus the total count.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]dto.UserResponse, int64, error) {
	users, err := s.userRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	total, err := s.userRepo.CountAll()
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return out, total, nil
}

// UpdateRole changes a user's role. Admins cannot demote themselves; that
// would otherwise leave a deployment without any admin.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID string, role models.UserRole) error {
	if actorID == targetID && role != models.UserRoleAdmin {
		return apperrors.ErrInvalidOperation("user", "Admins cannot demote themselves")
	}

	if err := s.userRepo.UpdateRole(targetID, role); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "user role changed", "user_id", targetID, "role", string(role))
	return nil
}

// VerifyOwner marks an owner account as identity-verified.
func (s *UserService) VerifyOwner(ctx context.Context, targetID string, verified bool) error {
	if err := s.userRepo.SetOwnerVerified(targetID, verified); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}
