package dto

type FaqCreateRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Category string `json:"category,omitempty"`
}

type FaqUpdateRequest struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Category string `json:"category,omitempty"`
}

type FaqResponse struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Category  string `json:"category,omitempty"`
	CreatedAt string `json:"created_at"`
}
