package dto

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SessionRequest struct {
	UserID string `json:"user_id"`
}
