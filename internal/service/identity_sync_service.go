package service

import (
	"context"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/tracing"
)

// IdentitySyncService applies identity-provider lifecycle events to the
// local users, workspaces and memberships tables. Local rows are a
// mirror; the provider is the source of truth, so the sync never
// rewrites on conflicts and never retries on missing rows. It logs and
// moves on.
type IdentitySyncService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
	logger        logger.Logger
}

// NewIdentitySyncService creates a new identity sync service
func NewIdentitySyncService(
	userRepo domain.UserRepository,
	workspaceRepo domain.WorkspaceRepository,
	logger logger.Logger,
) *IdentitySyncService {
	return &IdentitySyncService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		logger:        logger,
	}
}

// Process dispatches a verified webhook event. Unknown event types are
// ignored.
func (s *IdentitySyncService) Process(ctx context.Context, event *domain.IdentityEvent) error {
	ctx, span := tracing.StartServiceSpan(ctx, "IdentitySyncService", "Process")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	tracing.AddAttribute(ctx, "event_type", string(event.Type))

	switch event.Type {
	case domain.IdentityUserCreated:
		err = s.userCreated(ctx, event)
	case domain.IdentityUserUpdated:
		err = s.userUpdated(ctx, event)
	case domain.IdentityUserDeleted:
		err = s.userDeleted(ctx, event)
	case domain.IdentityOrgCreated:
		err = s.orgCreated(ctx, event)
	case domain.IdentityOrgUpdated:
		err = s.orgUpdated(ctx, event)
	case domain.IdentityOrgDeleted:
		err = s.orgDeleted(ctx, event)
	case domain.IdentityInvitationAccepted:
		err = s.invitationAccepted(ctx, event)
	default:
		s.logger.WithField("event_type", string(event.Type)).Debug("Ignoring unhandled identity event")
	}

	return err
}

func (s *IdentitySyncService) userCreated(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.UserPayload()
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:       payload.ID,
		Email:    payload.Email,
		Name:     payload.Name,
		ImageURL: payload.ImageURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if domain.IsConflict(err) {
			s.logger.WithField("user_id", payload.ID).Warn("Duplicate user.created event, keeping existing row")
			return nil
		}
		return err
	}

	s.logger.WithField("user_id", payload.ID).Info("Synced new user")
	return nil
}

func (s *IdentitySyncService) userUpdated(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.UserPayload()
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:       payload.ID,
		Email:    payload.Email,
		Name:     payload.Name,
		ImageURL: payload.ImageURL,
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithField("user_id", payload.ID).Warn("user.updated event for unknown user")
			return nil
		}
		return err
	}

	return nil
}

func (s *IdentitySyncService) userDeleted(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.UserPayload()
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, payload.ID); err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithField("user_id", payload.ID).Warn("user.deleted event for unknown user")
			return nil
		}
		return err
	}

	s.logger.WithField("user_id", payload.ID).Info("Deleted synced user")
	return nil
}

// orgCreated mirrors a provider organization as a workspace with an
// ADMIN membership for its creator. A replayed event finds the
// workspace already present and does nothing.
func (s *IdentitySyncService) orgCreated(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.OrganizationPayload()
	if err != nil {
		return err
	}

	exists, err := s.workspaceRepo.Exists(ctx, payload.ID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.WithField("workspace_id", payload.ID).Debug("Duplicate organization.created event, skipping")
		return nil
	}

	workspace := &domain.Workspace{
		ID:       payload.ID,
		Name:     payload.Name,
		Slug:     payload.Slug,
		OwnerID:  payload.CreatedBy,
		ImageURL: payload.ImageURL,
	}
	if err := s.workspaceRepo.CreateWithAdmin(ctx, workspace); err != nil {
		if domain.IsConflict(err) {
			s.logger.WithField("workspace_id", payload.ID).Warn("Concurrent organization.created delivery, keeping existing workspace")
			return nil
		}
		return err
	}

	s.logger.WithField("workspace_id", payload.ID).Info("Synced new workspace")
	return nil
}

func (s *IdentitySyncService) orgUpdated(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.OrganizationPayload()
	if err != nil {
		return err
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, payload.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithField("workspace_id", payload.ID).Warn("organization.updated event for unknown workspace")
			return nil
		}
		return err
	}

	if payload.Name != "" {
		workspace.Name = payload.Name
	}
	if payload.Slug != "" {
		workspace.Slug = payload.Slug
	}
	if payload.ImageURL != "" {
		workspace.ImageURL = payload.ImageURL
	}

	return s.workspaceRepo.Update(ctx, workspace)
}

func (s *IdentitySyncService) orgDeleted(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.OrganizationPayload()
	if err != nil {
		return err
	}

	if err := s.workspaceRepo.Delete(ctx, payload.ID); err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithField("workspace_id", payload.ID).Warn("organization.deleted event for unknown workspace")
			return nil
		}
		return err
	}

	s.logger.WithField("workspace_id", payload.ID).Info("Deleted synced workspace")
	return nil
}

func (s *IdentitySyncService) invitationAccepted(ctx context.Context, event *domain.IdentityEvent) error {
	payload, err := event.InvitationPayload()
	if err != nil {
		return err
	}

	role, err := domain.ParseRole(payload.RoleName)
	if err != nil {
		return err
	}

	member := &domain.WorkspaceMember{
		UserID:      payload.UserID,
		WorkspaceID: payload.OrganizationID,
		Role:        role,
	}
	if err := s.workspaceRepo.AddMember(ctx, member); err != nil {
		if domain.IsConflict(err) {
			s.logger.WithFields(map[string]interface{}{
				"workspace_id": payload.OrganizationID,
				"user_id":      payload.UserID,
			}).Warn("Duplicate invitation.accepted event, membership already present")
			return nil
		}
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"workspace_id": payload.OrganizationID,
		"user_id":      payload.UserID,
		"role":         role,
	}).Info("Synced workspace membership")

	return nil
}
