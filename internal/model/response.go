package model

// ErrorResponse is the failure envelope used on every error path.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// AuthResponse is returned by register and login: the public profile plus a token pair.
type AuthResponse struct {
	Error  bool      `json:"error"`
	User   Profile   `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// RefreshResponse carries only the rotated token pair.
type RefreshResponse struct {
	Error   bool      `json:"error"`
	Message string    `json:"message,omitempty"`
	Tokens  TokenPair `json:"tokens"`
}

type MessageResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// ListResponse mirrors the legacy program-data shape: a stringified total
// count and the records under "message".
type ListResponse struct {
	Error      bool   `json:"error"`
	TotalCount string `json:"totalCount"`
	Message    any    `json:"message"`
}
