package entities

// TokenAmountInput moves or approves an amount of a token.
type TokenAmountInput struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// ApproveInput sets a spender allowance.
type ApproveInput struct {
	Spender string `json:"spender" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}
