package jwt

import "net/http"

const bearerPrefix = "Bearer"

// SetBearer attaches "Authorization: Bearer <token>" to r. An empty token leaves r anonymous.
func SetBearer(r *http.Request, token string) {
	if token == "" {
		return
	}
	r.Header.Set("Authorization", bearerPrefix+" "+token)
}
