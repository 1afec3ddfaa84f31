package bot

// sessionState is the per-chat conversation state. Everything outside the
// multi-step flows runs in stateIdle.
type sessionState int

const (
	stateIdle sessionState = iota

	// stateAwaitingWallet: the user was asked for a wallet address and the
	// next text message is treated as one.
	stateAwaitingWallet

	// stateAwaitingAmount: the withdrawal amount keyboard is showing.
	stateAwaitingAmount

	// stateAwaitingConfirm: an amount is staged and the confirmation keyboard
	// is showing.
	stateAwaitingConfirm

	// stateAwaitingDepositProof: a deposit address was shown and the next
	// photo is the wallet screenshot.
	stateAwaitingDepositProof

	// stateAwaitingPaymentProof: the wallet screenshot was received and the
	// next photo is the payment confirmation.
	stateAwaitingPaymentProof
)

type session struct {
	state sessionState
}

func (s *session) reset() {
	s.state = stateIdle
}
