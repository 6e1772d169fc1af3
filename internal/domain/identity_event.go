package domain

import (
	"fmt"
	"net/http"
	"strings"

	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/tidwall/gjson"
)

// IdentityEventType names a lifecycle event from the identity provider
type IdentityEventType string

const (
	IdentityUserCreated        IdentityEventType = "user.created"
	IdentityUserUpdated        IdentityEventType = "user.updated"
	IdentityUserDeleted        IdentityEventType = "user.deleted"
	IdentityOrgCreated         IdentityEventType = "organization.created"
	IdentityOrgUpdated         IdentityEventType = "organization.updated"
	IdentityOrgDeleted         IdentityEventType = "organization.deleted"
	IdentityInvitationAccepted IdentityEventType = "organizationInvitation.accepted"
)

// IdentityEvent is the parsed webhook envelope: a type plus a data object
type IdentityEvent struct {
	Type IdentityEventType
	data gjson.Result
}

// IdentityUser is the user payload shared by user.created and user.updated
type IdentityUser struct {
	ID       string
	Email    string
	Name     string
	ImageURL string
}

// IdentityOrganization is the payload of organization.* events
type IdentityOrganization struct {
	ID        string
	Name      string
	Slug      string
	CreatedBy string
	ImageURL  string
}

// IdentityInvitation is the payload of organizationInvitation.accepted
type IdentityInvitation struct {
	UserID         string
	OrganizationID string
	RoleName       string
}

// ValidateIdentityWebhookSignature verifies an inbound webhook against the
// signing secret. The provider uses the standard-webhooks format with
// webhook-id, webhook-timestamp and webhook-signature headers.
func ValidateIdentityWebhookSignature(payload []byte, signatureHeader, timestampHeader, idHeader, secret string) error {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return fmt.Errorf("failed to create webhook verifier: %w", err)
	}

	headers := http.Header{}
	headers.Set("Webhook-Id", idHeader)
	headers.Set("Webhook-Timestamp", timestampHeader)
	headers.Set("Webhook-Signature", signatureHeader)

	if err := wh.Verify(payload, headers); err != nil {
		return fmt.Errorf("signature validation failed: %w", err)
	}

	return nil
}

// ParseIdentityEvent reads the webhook envelope without binding the data
// object to a struct; payload shapes differ per event type.
func ParseIdentityEvent(payload []byte) (*IdentityEvent, error) {
	if !gjson.ValidBytes(payload) {
		return nil, NewValidationError("webhook payload is not valid JSON")
	}

	parsed := gjson.ParseBytes(payload)
	eventType := parsed.Get("type").String()
	if eventType == "" {
		return nil, NewValidationError("webhook payload has no event type")
	}

	return &IdentityEvent{
		Type: IdentityEventType(eventType),
		data: parsed.Get("data"),
	}, nil
}

// UserPayload extracts the user fields from user.* events. The display
// name is the trimmed join of first and last names, the email is the
// first address on file.
func (e *IdentityEvent) UserPayload() (*IdentityUser, error) {
	id := e.data.Get("id").String()
	if id == "" {
		return nil, NewValidationError("user event is missing id")
	}

	name := strings.TrimSpace(e.data.Get("first_name").String() + " " + e.data.Get("last_name").String())

	return &IdentityUser{
		ID:       id,
		Email:    e.data.Get("email_addresses.0.email_address").String(),
		Name:     name,
		ImageURL: e.data.Get("image_url").String(),
	}, nil
}

// OrganizationPayload extracts the organization fields. For creation
// events id, name and created_by are required; slug falls back to the id.
func (e *IdentityEvent) OrganizationPayload() (*IdentityOrganization, error) {
	org := &IdentityOrganization{
		ID:        e.data.Get("id").String(),
		Name:      e.data.Get("name").String(),
		Slug:      e.data.Get("slug").String(),
		CreatedBy: e.data.Get("created_by").String(),
		ImageURL:  e.data.Get("image_url").String(),
	}

	if org.ID == "" {
		return nil, NewValidationError("organization event is missing id")
	}
	if e.Type == IdentityOrgCreated {
		if org.Name == "" || org.CreatedBy == "" {
			return nil, NewValidationError("organization.created event is missing name or created_by")
		}
	}
	if org.Slug == "" {
		org.Slug = org.ID
	}

	return org, nil
}

// InvitationPayload extracts the membership fields from
// organizationInvitation.accepted events
func (e *IdentityEvent) InvitationPayload() (*IdentityInvitation, error) {
	inv := &IdentityInvitation{
		UserID:         e.data.Get("user_id").String(),
		OrganizationID: e.data.Get("organization_id").String(),
		RoleName:       e.data.Get("role_name").String(),
	}

	if inv.UserID == "" || inv.OrganizationID == "" {
		return nil, NewValidationError("invitation event is missing user_id or organization_id")
	}
	if inv.RoleName == "" {
		return nil, NewValidationError("invitation event is missing role_name")
	}

	return inv, nil
}
