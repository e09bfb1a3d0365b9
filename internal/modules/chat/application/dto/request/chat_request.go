package request

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type ClearRequest struct {
	SessionID string `json:"session_id"`
}
