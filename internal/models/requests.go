package models

type CreateBatchRequest struct {
	JobPositionID string `form:"job_position_id" validate:"required,uuid"`
}

type CreateBatchResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	TotalFiles int    `json:"total_files"`
}

type BatchStatusResponse struct {
	ID            string         `json:"id"`
	JobPositionID string         `json:"job_position_id"`
	Status        string         `json:"status"`
	Progress      float64        `json:"progress"`
	TotalFiles    int            `json:"total_files"`
	Results       []RankedResult `json:"results,omitempty"`
	ErrorMessage  *string        `json:"error_message,omitempty"`
}

type UpdateCandidateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new screened accepted rejected"`
}

type CandidateSearchResult struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	Score         float32 `json:"score"`
	Snippet       string  `json:"snippet"`
}

type ChatRequest struct {
	SessionID     string `json:"session_id" validate:"omitempty,uuid"`
	Message       string `json:"message" validate:"required,max=4000"`
	JobPositionID string `json:"job_position_id" validate:"omitempty,uuid"`
	CandidateID   string `json:"candidate_id" validate:"omitempty,uuid"`
}

type ChatResponse struct {
	SessionID string      `json:"session_id"`
	Reply     ChatMessage `json:"reply"`
}
