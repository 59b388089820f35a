package models

// APIResponse is the common envelope for handler responses.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func SuccessResponse(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func ErrorResponse(code, message string) APIResponse {
	return APIResponse{Success: false, Code: code, Message: message}
}
