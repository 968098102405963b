package entity

import (
	"errors"
	"time"
)

// Domain errors for team tokens.
var (
	ErrInvalidTeamToken = errors.New("invalid team token")
)

// TeamToken is the OAuth token a workspace granted when installing the app.
type TeamToken struct {
	TeamID      string
	AccessToken string
	UserID      string // installing user; flips are posted as this user
	Scope       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTeamToken creates a team token stamped with the current time.
func NewTeamToken(teamID, accessToken, userID, scope string) (*TeamToken, error) {
	t := &TeamToken{
		TeamID:      teamID,
		AccessToken: accessToken,
		UserID:      userID,
		Scope:       scope,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

// Validate checks that the token can be used to post messages.
func (t *TeamToken) Validate() error {
	if t.TeamID == "" || t.AccessToken == "" {
		return ErrInvalidTeamToken
	}
	return nil
}

// Rotate replaces the access token and bumps UpdatedAt.
func (t *TeamToken) Rotate(accessToken string) error {
	if accessToken == "" {
		return ErrInvalidTeamToken
	}
	t.AccessToken = accessToken
	t.UpdatedAt = time.Now().UTC()
	return nil
}
