package service

import (
	"context"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
	"github.com/Planora/planora/pkg/tracing"
)

// ProjectService implements domain.ProjectServiceInterface
type ProjectService struct {
	projectRepo   domain.ProjectRepository
	workspaceRepo domain.WorkspaceRepository
	userRepo      domain.UserRepository
	logger        logger.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo domain.ProjectRepository,
	workspaceRepo domain.WorkspaceRepository,
	userRepo domain.UserRepository,
	logger logger.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// Create creates a project in a workspace. Only workspace admins can
// create projects. The team lead email resolves to a user id; an
// unknown email leaves the lead unset rather than failing the request.
func (s *ProjectService) Create(ctx context.Context, requesterID string, req *domain.CreateProjectRequest) (*domain.Project, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ProjectService", "Create")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	startDate, endDate, err := req.Validate()
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.workspaceRepo.IsAdmin(ctx, requesterID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		err = domain.NewPermissionError("only workspace admins can create projects")
		return nil, err
	}

	if _, err = s.workspaceRepo.GetByID(ctx, req.WorkspaceID); err != nil {
		return nil, err
	}

	teamLead, err := s.resolveLead(ctx, req.TeamLead)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
		TeamLead:    teamLead,
		StartDate:   startDate,
		EndDate:     endDate,
	}
	if err = s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	memberIDs, err := s.resolveMembers(ctx, req.WorkspaceID, req.TeamMembers)
	if err != nil {
		return nil, err
	}
	if teamLead != nil {
		memberIDs = append(memberIDs, *teamLead)
	}
	if err = s.projectRepo.AddMembers(ctx, project.ID, memberIDs); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"project_id":   project.ID,
		"workspace_id": req.WorkspaceID,
	}).Info("Created project")

	return s.projectRepo.GetWithMembers(ctx, project.ID)
}

// resolveLead maps a team lead email to a user id. Unknown emails
// resolve to nil.
func (s *ProjectService) resolveLead(ctx context.Context, email string) (*string, error) {
	if email == "" {
		return nil, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithField("email", email).Warn("Team lead email did not match any user, leaving lead unset")
			return nil, nil
		}
		return nil, err
	}
	return &user.ID, nil
}

// resolveMembers maps team member emails to user ids, keeping only
// users that belong to the workspace. Unknown emails and non-members
// are skipped.
func (s *ProjectService) resolveMembers(ctx context.Context, workspaceID string, emails []string) ([]string, error) {
	var userIDs []string
	for _, email := range emails {
		user, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			if domain.IsNotFound(err) {
				s.logger.WithField("email", email).Warn("Team member email did not match any user, skipping")
				continue
			}
			return nil, err
		}

		if _, err := s.workspaceRepo.GetMember(ctx, user.ID, workspaceID); err != nil {
			if domain.IsNotFound(err) {
				s.logger.WithField("user_id", user.ID).Warn("Team member is not in the workspace, skipping")
				continue
			}
			return nil, err
		}

		userIDs = append(userIDs, user.ID)
	}
	return userIDs, nil
}

// Update updates a project. The requester must be a workspace admin or
// the project's team lead. Zero-valued request fields leave the current
// values untouched.
func (s *ProjectService) Update(ctx context.Context, requesterID string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ProjectService", "Update")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	startDate, endDate, err := req.Validate()
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.workspaceRepo.IsAdmin(ctx, requesterID, project.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		isLead := project.TeamLead != nil && *project.TeamLead == requesterID
		if !isLead {
			err = domain.NewPermissionError("only workspace admins or the team lead can update the project")
			return nil, err
		}
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.Priority != "" {
		project.Priority = req.Priority
	}
	if req.Progress != nil {
		project.Progress = *req.Progress
	}
	if req.TeamLead != "" {
		teamLead, err := s.resolveLead(ctx, req.TeamLead)
		if err != nil {
			return nil, err
		}
		project.TeamLead = teamLead
	}
	if startDate != nil {
		project.StartDate = startDate
	}
	if endDate != nil {
		project.EndDate = endDate
	}

	if err = s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	return s.projectRepo.GetWithMembers(ctx, project.ID)
}

// AddMember adds a user, looked up by email, to a project. Only the
// team lead can add members, and the user must already belong to the
// parent workspace.
func (s *ProjectService) AddMember(ctx context.Context, requesterID, projectID, email string) (*domain.ProjectMember, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ProjectService", "AddMember")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	req := &domain.AddProjectMemberRequest{Email: email}
	if err = req.Validate(); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	isLead, err := s.projectRepo.IsLead(ctx, requesterID, projectID)
	if err != nil {
		return nil, err
	}
	if !isLead {
		err = domain.NewPermissionError("only the team lead can add project members")
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err = s.workspaceRepo.GetMember(ctx, user.ID, project.WorkspaceID); err != nil {
		if domain.IsNotFound(err) {
			err = domain.NewValidationError("user is not a member of the workspace")
		}
		return nil, err
	}

	member := &domain.ProjectMember{
		UserID:    user.ID,
		ProjectID: projectID,
		User:      user,
	}
	if err = s.projectRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"project_id": projectID,
		"user_id":    user.ID,
	}).Info("Added project member")

	return member, nil
}
