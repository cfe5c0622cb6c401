package models

import "github.com/golang-jwt/jwt/v4"

// SessionClaims are carried in the signed session token. The subject is the user id.
type SessionClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}
