package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthProvider string

const (
	AuthProviderLocal    AuthProvider = "jwt"
	AuthProviderFirebase AuthProvider = "firebase"
)

// User is an account of the built-in identity provider. Accounts of an
// external provider only exist as a Profile.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	FullName     string             `json:"full_name" bson:"full_name"`
	LastLoginAt  *time.Time         `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   string       `json:"user_id"`
	Email    string       `json:"email"`
	Provider AuthProvider `json:"provider"`
}

type AuthResult struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
	Tokens  *Tokens  `json:"tokens"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
