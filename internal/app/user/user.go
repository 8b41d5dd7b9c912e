/*
Package user contains the identity records the backend returns for the signed-in account
and for the authors shown next to public works and comments.
*/
package user

// User is the signed-in account as returned by the identity endpoint.
// Fields use the backend's JSON names.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsAdmin   bool   `json:"is_admin"`

	// TrustLevel is the backend-assigned tier that sets DailyQuota.
	TrustLevel int `json:"trust_level"`

	DailyQuota       int `json:"daily_quota"`
	TodayUsedCount   int `json:"today_used_count"`
	RemainingQuota   int `json:"remaining_quota"`
	TotalGenerations int `json:"total_generations"`
}

// DisplayName returns the nickname, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// Author is the public identity attached to a gallery item or comment.
type Author struct {
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DisplayName returns the nickname, falling back to the username. A nil Author is anonymous.
func (a *Author) DisplayName() string {
	if a == nil {
		return "Anonymous"
	}
	if a.Nickname != "" {
		return a.Nickname
	}
	return a.Username
}
