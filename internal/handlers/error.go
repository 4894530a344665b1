package handlers

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the standard API success body for message-only replies.
type MessageResponse struct {
	Message string `json:"message"`
}
