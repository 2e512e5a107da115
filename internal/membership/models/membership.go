// Package models defines club membership records as projected from approved
// applications.
package models

import (
	"time"

	id "clubhub/pkg/domain"
	dErrors "clubhub/pkg/domain-errors"
)

// Role is a member's standing within a club.
type Role string

const (
	RoleMember      Role = "member"
	RoleOrganizer   Role = "organizer"
	RoleClubManager Role = "club_manager"
)

// ParseRole validates a role supplied on an approval payload. An empty role
// defaults to member.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleMember, nil
	}
	switch r := Role(s); r {
	case RoleMember, RoleOrganizer, RoleClubManager:
		return r, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid membership role")
	}
}

// CanReview reports whether the role may review applications and manage
// campaigns for its club.
func (r Role) CanReview() bool {
	return r == RoleOrganizer || r == RoleClubManager
}

// Membership records one user's membership in one club. The source
// application makes the projection idempotent: re-projecting the same
// approval upserts rather than duplicates.
type Membership struct {
	ID            id.MembershipID  `json:"id"`
	ClubID        id.ClubID        `json:"club_id"`
	UserID        id.UserID        `json:"user_id"`
	Role          Role             `json:"role"`
	ApplicationID id.ApplicationID `json:"application_id,omitempty"`
	JoinedAt      time.Time        `json:"joined_at"`
}

func NewMembership(clubID id.ClubID, userID id.UserID, role Role, applicationID id.ApplicationID, now time.Time) *Membership {
	return &Membership{
		ID:            id.NewMembershipID(),
		ClubID:        clubID,
		UserID:        userID,
		Role:          role,
		ApplicationID: applicationID,
		JoinedAt:      now,
	}
}
