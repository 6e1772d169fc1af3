package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/tracing"
)

// WorkspaceService implements domain.WorkspaceServiceInterface
type WorkspaceService struct {
	workspaceRepo domain.WorkspaceRepository
	projectRepo   domain.ProjectRepository
	taskRepo      domain.TaskRepository
	userRepo      domain.UserRepository
	logger        logger.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo domain.WorkspaceRepository,
	projectRepo domain.ProjectRepository,
	taskRepo domain.TaskRepository,
	userRepo domain.UserRepository,
	logger logger.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// ListForUser returns the caller's workspaces with members, projects,
// tasks and owner nested. The per-workspace detail loads fan out
// concurrently.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]*domain.WorkspaceWithDetails, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "WorkspaceService", "ListForUser")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	workspaces, err := s.workspaceRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.WithField("user_id", userID).Error("Failed to list workspaces: " + err.Error())
		return nil, err
	}

	results := make([]*domain.WorkspaceWithDetails, len(workspaces))
	g, gctx := errgroup.WithContext(ctx)

	for i, workspace := range workspaces {
		g.Go(func() error {
			details, err := s.loadDetails(gctx, workspace)
			if err != nil {
				return err
			}
			results[i] = details
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		s.logger.WithField("user_id", userID).Error("Failed to load workspace details: " + err.Error())
		return nil, err
	}

	return results, nil
}

func (s *WorkspaceService) loadDetails(ctx context.Context, workspace *domain.Workspace) (*domain.WorkspaceWithDetails, error) {
	details := &domain.WorkspaceWithDetails{Workspace: *workspace}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		members, err := s.workspaceRepo.ListMembers(gctx, workspace.ID)
		if err != nil {
			return err
		}
		details.Members = members
		return nil
	})

	g.Go(func() error {
		projects, err := s.projectRepo.ListByWorkspace(gctx, workspace.ID)
		if err != nil {
			return err
		}
		for _, project := range projects {
			tasks, err := s.taskRepo.ListByProject(gctx, project.ID)
			if err != nil {
				return err
			}
			project.Tasks = tasks
		}
		details.Projects = projects
		return nil
	})

	g.Go(func() error {
		owner, err := s.userRepo.GetByID(gctx, workspace.OwnerID)
		if err != nil {
			// Owner rows can lag behind workspace rows during identity sync
			if domain.IsNotFound(err) {
				return nil
			}
			return err
		}
		details.Owner = owner
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return details, nil
}

// AddMember adds a user, looked up by email, to a workspace. Only
// workspace admins can add members.
func (s *WorkspaceService) AddMember(ctx context.Context, requesterID string, req *domain.AddWorkspaceMemberRequest) (*domain.WorkspaceMember, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "WorkspaceService", "AddMember")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	role, err := req.Validate()
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.workspaceRepo.IsAdmin(ctx, requesterID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		err = domain.NewPermissionError("only workspace admins can add members")
		return nil, err
	}

	if _, err = s.workspaceRepo.GetByID(ctx, req.WorkspaceID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	member := &domain.WorkspaceMember{
		UserID:      user.ID,
		WorkspaceID: req.WorkspaceID,
		Role:        role,
		User:        user,
	}
	if err = s.workspaceRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"workspace_id": req.WorkspaceID,
		"user_id":      user.ID,
		"role":         role,
	}).Info("Added workspace member")

	return member, nil
}
