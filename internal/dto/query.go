package dto

type QueryRequest struct {
	UserID int64  `json:"user_id"`
	Query  string `json:"query"`
}

type QueryResponse struct {
	UserID             int64  `json:"user_id"`
	Query              string `json:"query"`
	SupportAdvice      string `json:"support_advice"`
	EscalationRequired bool   `json:"escalation_required"`
	RiskLevel          int    `json:"risk_level"`
}
