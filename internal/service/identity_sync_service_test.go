package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/internal/domain/mocks"
	"github.com/Planora/planora/pkg/logger"
)

func setupIdentitySyncTest(t *testing.T) (*mocks.MockUserRepository, *mocks.MockWorkspaceRepository, *IdentitySyncService, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	workspaceRepo := mocks.NewMockWorkspaceRepository(ctrl)
	svc := NewIdentitySyncService(userRepo, workspaceRepo, logger.NewTestLogger(t))
	return userRepo, workspaceRepo, svc, ctrl
}

func parseEvent(t *testing.T, payload string) *domain.IdentityEvent {
	event, err := domain.ParseIdentityEvent([]byte(payload))
	require.NoError(t, err)
	return event
}

func TestIdentitySync_UserCreated(t *testing.T) {
	userRepo, _, svc, ctrl := setupIdentitySyncTest(t)
	defer ctrl.Finish()

	event := parseEvent(t, `{
		"type": "user.created",
		"data": {
			"id": "user_abc",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"image_url": "https://img.example.com/ada.png",
			"email_addresses": [{"email_address": "ada@example.com"}]
		}
	}`)

	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user *domain.User) error {
			assert.Equal(t, "user_abc", user.ID)
			assert.Equal(t, "ada@example.com", user.Email)
			assert.Equal(t, "Ada Lovelace", user.Name)
			return nil
		})

	require.NoError(t, svc.Process(context.Background(), event))
}

func TestIdentitySync_DuplicateUserCreatedIsAcknowledged(t *testing.T) {
	userRepo, _, svc, ctrl := setupIdentitySyncTest(t)
	defer ctrl.Finish()

	event := parseEvent(t, `{
		"type": "user.created",
		"data": {"id": "user_abc", "email_addresses": [{"email_address": "ada@example.com"}]}
	}`)

	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(domain.NewConflictError("user already exists: user_abc"))

	// Duplicate deliveries are logged, never surfaced as errors
	require.NoError(t, svc.Process(context.Background(), event))
}

func TestIdentitySync_OrgCreatedIsIdempotent(t *testing.T) {
	orgPayload := `{
		"type": "organization.created",
		"data": {
			"id": "org_1",
			"name": "Acme",
			"slug": "acme",
			"created_by": "user_abc"
		}
	}`

	t.Run("first delivery creates workspace with admin", func(t *testing.T) {
		_, workspaceRepo, svc, ctrl := setupIdentitySyncTest(t)
		defer ctrl.Finish()

		workspaceRepo.EXPECT().Exists(gomock.Any(), "org_1").Return(false, nil)
		workspaceRepo.EXPECT().CreateWithAdmin(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, workspace *domain.Workspace) error {
				assert.Equal(t, "org_1", workspace.ID)
				assert.Equal(t, "Acme", workspace.Name)
				assert.Equal(t, "user_abc", workspace.OwnerID)
				return nil
			})

		require.NoError(t, svc.Process(context.Background(), parseEvent(t, orgPayload)))
	})

	t.Run("replayed delivery is a no-op", func(t *testing.T) {
		_, workspaceRepo, svc, ctrl := setupIdentitySyncTest(t)
		defer ctrl.Finish()

		workspaceRepo.EXPECT().Exists(gomock.Any(), "org_1").Return(true, nil)
		// No CreateWithAdmin expectation: a second workspace or
		// membership row would fail the test

		require.NoError(t, svc.Process(context.Background(), parseEvent(t, orgPayload)))
	})
}

func TestIdentitySync_OrgCreatedMissingFields(t *testing.T) {
	_, _, svc, ctrl := setupIdentitySyncTest(t)
	defer ctrl.Finish()

	event := parseEvent(t, `{"type": "organization.created", "data": {"id": "org_1"}}`)

	err := svc.Process(context.Background(), event)
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestIdentitySync_OrgSlugFallsBackToID(t *testing.T) {
	_, workspaceRepo, svc, ctrl := setupIdentitySyncTest(t)
	defer ctrl.Finish()

	event := parseEvent(t, `{
		"type": "organization.created",
		"data": {"id": "org_1", "name": "Acme", "created_by": "user_abc"}
	}`)

	workspaceRepo.EXPECT().Exists(gomock.Any(), "org_1").Return(false, nil)
	workspaceRepo.EXPECT().CreateWithAdmin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, workspace *domain.Workspace) error {
			assert.Equal(t, "org_1", workspace.Slug)
			return nil
		})

	require.NoError(t, svc.Process(context.Background(), event))
}

func TestIdentitySync_InvitationAccepted(t *testing.T) {
	t.Run("membership created with normalized role", func(t *testing.T) {
		_, workspaceRepo, svc, ctrl := setupIdentitySyncTest(t)
		defer ctrl.Finish()

		event := parseEvent(t, `{
			"type": "organizationInvitation.accepted",
			"data": {"user_id": "user_xyz", "organization_id": "org_1", "role_name": "member"}
		}`)

		workspaceRepo.EXPECT().AddMember(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, member *domain.WorkspaceMember) error {
				assert.Equal(t, "user_xyz", member.UserID)
				assert.Equal(t, "org_1", member.WorkspaceID)
				assert.Equal(t, domain.RoleMember, member.Role)
				return nil
			})

		require.NoError(t, svc.Process(context.Background(), event))
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, _, svc, ctrl := setupIdentitySyncTest(t)
		defer ctrl.Finish()

		event := parseEvent(t, `{
			"type": "organizationInvitation.accepted",
			"data": {"user_id": "user_xyz", "organization_id": "org_1", "role_name": "owner"}
		}`)

		require.Error(t, svc.Process(context.Background(), event))
	})

	t.Run("duplicate membership is acknowledged", func(t *testing.T) {
		_, workspaceRepo, svc, ctrl := setupIdentitySyncTest(t)
		defer ctrl.Finish()

		event := parseEvent(t, `{
			"type": "organizationInvitation.accepted",
			"data": {"user_id": "user_xyz", "organization_id": "org_1", "role_name": "ADMIN"}
		}`)

		workspaceRepo.EXPECT().AddMember(gomock.Any(), gomock.Any()).
			Return(domain.NewConflictError("user is already a member of this workspace"))

		require.NoError(t, svc.Process(context.Background(), event))
	})
}

func TestIdentitySync_UserDeletedForUnknownUser(t *testing.T) {
	userRepo, _, svc, ctrl := setupIdentitySyncTest(t)
	defer ctrl.Finish()

	event := parseEvent(t, `{"type": "user.deleted", "data": {"id": "user_gone"}}`)

	userRepo.EXPECT().Delete(gomock.Any(), "user_gone").
		Return(&domain.ErrNotFound{Entity: "user", ID: "user_gone"})

	require.NoError(t, svc.Process(context.Background(), event))
}

func TestIdentitySync_UnknownEventTypeIgnored(t *testing.T) {
	_, _, svc, ctrl := setupIdentitySyncTest(t)
	defer ctrl.Finish()

	event := parseEvent(t, `{"type": "session.created", "data": {"id": "sess_1"}}`)

	require.NoError(t, svc.Process(context.Background(), event))
}
