package domain

import "time"

// ProfileFields are the Seeker details checked before the dashboard.
type ProfileFields struct {
	Phone      string `json:"phone,omitempty"`
	Location   string `json:"location,omitempty"`
	Age        *int   `json:"age,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Gender     string `json:"gender,omitempty"`
}

// Complete reports whether every field has a value.
func (f ProfileFields) Complete() bool {
	return f.Phone != "" && f.Location != "" && f.Age != nil && f.Occupation != "" && f.Gender != ""
}

// User models an account as the backend stores it.
type User struct {
	ID                            string        `json:"id"`
	Email                         string        `json:"email"`
	Name                          string        `json:"name"`
	PasswordHash                  string        `json:"-"`
	Role                          Role          `json:"role"`
	IsNewUser                     bool          `json:"isNewUser"`
	HasCompletedBehaviorQuestions bool          `json:"hasCompletedBehaviorQuestions"`
	Profile                       ProfileFields `json:"profile"`
	CreatedAt                     time.Time     `json:"created_at"`
	UpdatedAt                     time.Time     `json:"updated_at"`
}

// Snapshot returns the profile copy cached in a session.
func (u *User) Snapshot() *UserProfile {
	return &UserProfile{
		ID:                            u.ID,
		Email:                         u.Email,
		Name:                          u.Name,
		Role:                          u.Role,
		IsNewUser:                     u.IsNewUser,
		HasCompletedBehaviorQuestions: u.HasCompletedBehaviorQuestions,
		ProfileFields:                 u.Profile,
	}
}

// UserProfile is the last-known profile snapshot stored under the
// current-user key. It may go stale until the next login or refresh.
type UserProfile struct {
	ID                            string `json:"id"`
	Email                         string `json:"email,omitempty"`
	Name                          string `json:"name,omitempty"`
	Role                          Role   `json:"role"`
	IsNewUser                     bool   `json:"isNewUser"`
	HasCompletedBehaviorQuestions bool   `json:"hasCompletedBehaviorQuestions"`
	ProfileFields
}

// NeedsOnboarding applies to Seekers only.
func (p *UserProfile) NeedsOnboarding() bool {
	return p != nil && p.Role == RoleSeeker && p.IsNewUser && !p.HasCompletedBehaviorQuestions
}

// NeedsProfileCompletion applies to Seekers only.
func (p *UserProfile) NeedsProfileCompletion() bool {
	return p != nil && p.Role == RoleSeeker && !p.ProfileFields.Complete()
}
