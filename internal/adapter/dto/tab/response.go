package tab

// RegisterTabResponse represents a freshly issued tab identity
type RegisterTabResponse struct {
	TabID     string `json:"tab_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}
