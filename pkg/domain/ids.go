// Package domain provides typed identifiers shared across bounded contexts.
//
// Each entity gets its own UUID-backed type so the compiler rejects a
// ClubID where a CampaignID is expected. Construct via the Parse helpers at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"database/sql/driver"

	"github.com/google/uuid"

	dErrors "clubhub/pkg/domain-errors"
)

type (
	// ClubID identifies the club that owns campaigns and memberships.
	ClubID uuid.UUID
	// UserID identifies an acting user (applicant, reviewer, manager).
	UserID uuid.UUID
	// CampaignID identifies a recruitment campaign.
	CampaignID uuid.UUID
	// ApplicationID identifies one user's application to one campaign.
	ApplicationID uuid.UUID
	// MembershipID identifies a club membership record.
	MembershipID uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

// ParseClubID constructs a ClubID from external input.
func ParseClubID(s string) (ClubID, error) {
	u, err := parseUUID(s, "club ID")
	return ClubID(u), err
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

// ParseCampaignID constructs a CampaignID from external input.
func ParseCampaignID(s string) (CampaignID, error) {
	u, err := parseUUID(s, "campaign ID")
	return CampaignID(u), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application ID")
	return ApplicationID(u), err
}

// ParseMembershipID constructs a MembershipID from external input.
func ParseMembershipID(s string) (MembershipID, error) {
	u, err := parseUUID(s, "membership ID")
	return MembershipID(u), err
}

func (id ClubID) String() string        { return uuid.UUID(id).String() }
func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id CampaignID) String() string    { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id MembershipID) String() string  { return uuid.UUID(id).String() }

func (id ClubID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CampaignID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MembershipID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewClubID mints a random ClubID.
func NewClubID() ClubID { return ClubID(uuid.New()) }

// NewUserID mints a random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewCampaignID mints a random CampaignID.
func NewCampaignID() CampaignID { return CampaignID(uuid.New()) }

// NewApplicationID mints a random ApplicationID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewMembershipID mints a random MembershipID.
func NewMembershipID() MembershipID { return MembershipID(uuid.New()) }

// MarshalText implementations keep typed IDs JSON-friendly as plain UUID strings.

func (id ClubID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id CampaignID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id MembershipID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *ClubID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ClubID(u)
	return nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *CampaignID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = CampaignID(u)
	return nil
}

func (id *ApplicationID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ApplicationID(u)
	return nil
}

func (id *MembershipID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = MembershipID(u)
	return nil
}

// database/sql round-tripping as UUID columns.

func scanUUID(src any) (uuid.UUID, error) {
	var u uuid.UUID
	err := u.Scan(src)
	return u, err
}

func (id ClubID) Value() (driver.Value, error)        { return id.String(), nil }
func (id UserID) Value() (driver.Value, error)        { return id.String(), nil }
func (id CampaignID) Value() (driver.Value, error)    { return id.String(), nil }
func (id ApplicationID) Value() (driver.Value, error) { return id.String(), nil }
func (id MembershipID) Value() (driver.Value, error)  { return id.String(), nil }

func (id *ClubID) Scan(src any) error {
	u, err := scanUUID(src)
	*id = ClubID(u)
	return err
}

func (id *UserID) Scan(src any) error {
	u, err := scanUUID(src)
	*id = UserID(u)
	return err
}

func (id *CampaignID) Scan(src any) error {
	u, err := scanUUID(src)
	*id = CampaignID(u)
	return err
}

func (id *ApplicationID) Scan(src any) error {
	u, err := scanUUID(src)
	*id = ApplicationID(u)
	return err
}

func (id *MembershipID) Scan(src any) error {
	u, err := scanUUID(src)
	*id = MembershipID(u)
	return err
}
