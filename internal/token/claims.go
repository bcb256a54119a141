package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned by Claims when the credential is not a JWT.
var ErrMalformedToken = errors.New("malformed session credential")

// VideoGrant is the media-server permission block carried in the credential.
type VideoGrant struct {
	Room                 string `json:"room,omitempty"`
	RoomJoin             bool   `json:"roomJoin,omitempty"`
	RoomAdmin            bool   `json:"roomAdmin,omitempty"`
	CanPublish           *bool  `json:"canPublish,omitempty"`
	CanSubscribe         *bool  `json:"canSubscribe,omitempty"`
	CanPublishData       *bool  `json:"canPublishData,omitempty"`
	CanUpdateOwnMetadata *bool  `json:"canUpdateOwnMetadata,omitempty"`
}

// Claims is the decoded payload of a session credential.
type Claims struct {
	jwt.RegisteredClaims
	Name     string      `json:"name,omitempty"`
	Metadata string      `json:"metadata,omitempty"`
	Video    *VideoGrant `json:"video,omitempty"`
}

// Identity is the participant identity the credential was issued for.
func (c *Claims) Identity() string { return c.Subject }

// Expired reports whether the credential has an expiry at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}

// CanPublish reports whether the grant allows publishing media. LiveKit treats
// an absent flag as allowed.
func (c *Claims) CanPublish() bool {
	return c.Video != nil && (c.Video.CanPublish == nil || *c.Video.CanPublish)
}

// Claims decodes the credential without verifying its signature; the client
// never holds the signing secret. Use it to inspect identity, room and expiry
// when deciding whether to reuse a credential.
func (r Response) Claims() (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(r.Token, claims); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	return claims, nil
}
