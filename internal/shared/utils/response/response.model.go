package response

// APIResponse is the envelope every JSON endpoint returns.
// The RSVP site reads only success and message.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
