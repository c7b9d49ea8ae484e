package domain

// Principal is the verified identity behind a bearer credential.
// Email is the only field authorization decisions rely on.
type Principal struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
}
