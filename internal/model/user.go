package model

// Role distinguishes the two account types the product supports.
type Role string

const (
	RoleStudent   Role = "student"
	RoleCounselor Role = "counselor"
)

type AuthUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// PersistedSession is the blob written to durable storage after a
// successful sign-in, sign-up, or refresh. Its absence means signed out.
type PersistedSession struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         AuthUser `json:"user"`
}
