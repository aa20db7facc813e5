package models

type LoginRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Username string `json:"username"`
}

type PlayRequest struct {
	Bet    int64  `json:"bet" binding:"required,min=1"`
	Choice string `json:"choice"`
}

type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

type WithdrawRequest struct {
	Amount  int64  `json:"amount" binding:"required,min=1"`
	Address string `json:"address" binding:"required"`
}

type BlackjackStartRequest struct {
	Bet int64 `json:"bet" binding:"required,min=1"`
}

// BlackjackView is the table as shown to the player. The dealer's hole
// card stays hidden until the round is finished.
type BlackjackView struct {
	SessionID   string   `json:"session_id"`
	Bet         int64    `json:"bet"`
	Player      []string `json:"player"`
	PlayerValue int      `json:"player_value"`
	Dealer      []string `json:"dealer"`
	DealerValue int      `json:"dealer_value,omitempty"`
	Doubled     bool     `json:"doubled"`
	Finished    bool     `json:"finished"`
}
