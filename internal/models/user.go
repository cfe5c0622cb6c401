package models

import (
	"time"
)

// User is keyed by a provider-qualified id such as "google:1234".
type User struct {
	ID                  string     `json:"id" gorm:"type:varchar(191);primaryKey"`
	Email               *string    `json:"email" gorm:"type:varchar(320);uniqueIndex"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	ProfileImageURL     *string    `json:"profileImageUrl"`
	Username            string     `json:"username" gorm:"type:varchar(20);uniqueIndex;not null"`
	Bio                 *string    `json:"bio" gorm:"type:text"`
	UsernameChangeCount int        `json:"usernameChangeCount" gorm:"not null;default:0"`
	UsernameChangedAt   *time.Time `json:"usernameChangedAt"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// UpdateProfileRequest is the body of PATCH /api/profile. Absent fields are left untouched.
type UpdateProfileRequest struct {
	Username        *string `json:"username,omitempty" validate:"omitnil,username"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
}

// ProfileUpdate is the validated, normalized form handed to the repository.
type ProfileUpdate struct {
	Username        *string
	Bio             *string
	ProfileImageURL *string
}

// UsernameEligibility is the result of the username-change quota check.
type UsernameEligibility struct {
	CanChange       bool       `json:"canChange"`
	Reason          string     `json:"reason,omitempty"`
	NextAllowedDate *time.Time `json:"nextAllowedDate,omitempty"`
}

// UsernameCheckResponse answers GET /api/profile/check-username/:username
type UsernameCheckResponse struct {
	Username        string     `json:"username"`
	Available       bool       `json:"available"`
	CanChange       bool       `json:"canChange"`
	Reason          string     `json:"reason,omitempty"`
	NextAllowedDate *time.Time `json:"nextAllowedDate,omitempty"`
}

// Identity is what an identity provider tells us about a signed-in user.
type Identity struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	DisplayName     string
	ProfileImageURL string
}
