package model

// AuthUser - actor identity carried by a verified bearer token
type AuthUser struct {
	ID      int64
	LoginID string
}

type AuthTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
