package models

// OperatorLoginRequest is the operator login payload.
type OperatorLoginRequest struct {
	Password string `json:"password"`
}

type StatsResponse struct {
	Accounts     int     `json:"accounts"`
	TotalBalance float64 `json:"total_balance"`
}

type WithdrawalResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Address     string  `json:"address"`
	Amount      float64 `json:"amount"`
	ProcessedAt string  `json:"processed_at"`
}

type BroadcastRequest struct {
	Message string `json:"message"`
}
