package domain

import (
	"strings"
	"time"

	apperrors "github.com/blizx/zenith/internal/platform/errors"
)

var (
	// ErrProfileEmptyUserID indicates a profile without an owning user.
	ErrProfileEmptyUserID = apperrors.New(apperrors.CodeProfileEmptyUserID, "profile user id is required")
	// ErrProfileEmptyName indicates a profile without a display name.
	ErrProfileEmptyName = apperrors.New(apperrors.CodeProfileEmptyName, "profile display name is required")
)

// Profile captures display metadata for a user account. It is keyed by the
// owning user and upserted once onboarding completes.
type Profile struct {
	UserID             string    `json:"user_id"`
	DisplayName        string    `json:"display_name"`
	Age                string    `json:"age"`
	Occupation         string    `json:"occupation"`
	OnboardingComplete bool      `json:"completed_onboarding"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProfileInput is the mutable payload used to create or update a profile.
type ProfileInput struct {
	UserID             string
	DisplayName        string
	Age                string
	Occupation         string
	OnboardingComplete bool
}

// NormalizeProfileInput trims all string fields.
func NormalizeProfileInput(input ProfileInput) ProfileInput {
	input.UserID = strings.TrimSpace(input.UserID)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Age = strings.TrimSpace(input.Age)
	input.Occupation = strings.TrimSpace(input.Occupation)
	return input
}

// NewProfile validates and builds a full profile from input.
func NewProfile(input ProfileInput, now func() time.Time) (Profile, error) {
	normalized := NormalizeProfileInput(input)
	if normalized.UserID == "" {
		return Profile{}, ErrProfileEmptyUserID
	}
	if normalized.DisplayName == "" {
		return Profile{}, ErrProfileEmptyName
	}

	if now == nil {
		now = time.Now
	}

	return Profile{
		UserID:             normalized.UserID,
		DisplayName:        normalized.DisplayName,
		Age:                normalized.Age,
		Occupation:         normalized.Occupation,
		OnboardingComplete: normalized.OnboardingComplete,
		UpdatedAt:          now().UTC(),
	}, nil
}
