package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/logging"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soulbeats/internal/validation"
)

type UserResponse struct {
	User    *models.User
	Outcome common.Outcome
}

// UserService registers callers and maintains their profiles.
type UserService struct {
	gw          *dbx.Gateway
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(gw *dbx.Gateway, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &UserService{gw: gw, repomanager: m, logger: logger.With("module", "user-service")}
}

// Register creates the account for ownerID together with its USER_CREATED
// history entry. A blank display name defaults to the email's local part.
func (s *UserService) Register(ctx context.Context, ownerID string, reg models.Registration) (*UserResponse, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	reg.Email = strings.TrimSpace(reg.Email)
	reg.DisplayName = strings.TrimSpace(reg.DisplayName)
	if err := validation.Struct(reg); err != nil {
		return nil, err
	}
	if reg.DisplayName == "" {
		reg.DisplayName, _, _ = strings.Cut(reg.Email, "@")
	}

	repo := s.repomanager.Users(s.gw)
	exists, err := repo.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: user %s", common.ErrAlreadyExists, ownerID)
	}

	u := &models.User{OwnerID: ownerID, DisplayName: reg.DisplayName, Email: reg.Email, RegisteredAt: time.Now().UTC()}
	if err := repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user registered", "owner_id", ownerID)

	// read back for the generated id
	stored, err := repo.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: stored, Outcome: common.Success("User registered")}, nil
}

// GetUserInfo returns the caller's own account. Reading someone else's
// account is forbidden.
func (s *UserService) GetUserInfo(ctx context.Context, callerID, ownerID string) (*UserResponse, error) {
	if err := checkOwner(callerID, ownerID); err != nil {
		return nil, err
	}
	u, err := s.repomanager.Users(s.gw).GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: u, Outcome: common.Success("User found")}, nil
}

// UpdateProfile applies the set fields of p and records a PROFILE_UPDATED
// history entry in the same transaction.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, ownerID string, p models.ProfileUpdate) (*UserResponse, error) {
	if err := checkOwner(callerID, ownerID); err != nil {
		return nil, err
	}
	if err := validation.Struct(p); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.gw)
	ok, err := repo.UpdateProfile(ctx, ownerID, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %s", common.ErrorNotFound, ownerID)
	}
	s.logger.Info(ctx, "profile updated", "owner_id", ownerID)

	u, err := repo.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: u, Outcome: common.Success("Profile updated")}, nil
}

func checkOwner(callerID, ownerID string) error {
	if callerID == "" {
		return common.ErrorUnauthorized
	}
	if ownerID != callerID {
		return fmt.Errorf("%w: %s", common.ErrForbidden, ownerID)
	}
	return nil
}
