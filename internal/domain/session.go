// Package domain contains the core data model shared across the bot.
package domain

import "time"

// Language is the presentation locale chosen by the user.
type Language string

const (
	LangRU Language = "ru"
	LangEN Language = "en"
)

// DefaultLanguage is assigned to sessions created before the user picks one.
const DefaultLanguage = LangRU

// Flow identifies which product journey a session is currently in.
type Flow string

const (
	FlowNone         Flow = ""
	FlowSubscription Flow = "sub"
	FlowTopup        Flow = "topup"
	FlowStatus       Flow = "status"
)

// Step is the fine-grained position within a flow awaiting specific input.
type Step string

const (
	StepNone             Step = ""
	StepAwaitTopupEmail  Step = "await_topup_email"
	StepAwaitReceipt     Step = "await_receipt"
	StepAwaitTxID        Step = "await_txid"
	StepChoosingCoin     Step = "choosing_coin"
	StepAwaitStatusCreds Step = "await_status_creds"
)

// PayMethod is the payment rail selected for the active order.
type PayMethod string

const (
	PayNone         PayMethod = ""
	PayBankTransfer PayMethod = "bank"
	PayCrypto       PayMethod = "crypto"
)

// Coin identifies a supported cryptocurrency deposit option.
type Coin string

const (
	CoinUSDTTRC20 Coin = "USDT_TRC20"
	CoinBTC       Coin = "BTC"
	CoinETH       Coin = "ETH"
)

// Session captures the conversation state of a single user. A session is
// created lazily on the first inbound event and mutated only by the
// conversation machine.
type Session struct {
	UserID     int64     `json:"user_id"`
	Language   Language  `json:"language"`
	Flow       Flow      `json:"flow"`
	Step       Step      `json:"step"`
	TermMonths int       `json:"term_months,omitempty"`
	TopupUSD   int       `json:"topup_usd,omitempty"`
	PayMethod  PayMethod `json:"pay_method,omitempty"`
	Coin       Coin      `json:"coin,omitempty"`
	OrderToken string    `json:"order_token,omitempty"`
	Email      string    `json:"email,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession returns a session with default values for the given user.
func NewSession(userID int64) *Session {
	return &Session{
		UserID:   userID,
		Language: DefaultLanguage,
	}
}

// ResetFlow restores every flow-related field to its default. Language is a
// user preference, not flow state, so it survives the reset.
func (s *Session) ResetFlow() {
	s.Flow = FlowNone
	s.Step = StepNone
	s.TermMonths = 0
	s.TopupUSD = 0
	s.PayMethod = PayNone
	s.Coin = ""
	s.OrderToken = ""
	s.Email = ""
}

// StepConsistent reports whether the recorded step is reachable within the
// recorded flow. Inconsistent combinations indicate a corrupted snapshot.
func (s *Session) StepConsistent() bool {
	switch s.Step {
	case StepNone:
		return true
	case StepAwaitTopupEmail:
		return s.Flow == FlowTopup
	case StepChoosingCoin:
		return s.PayMethod == PayCrypto
	case StepAwaitReceipt, StepAwaitTxID:
		return s.Flow == FlowSubscription || s.Flow == FlowTopup
	case StepAwaitStatusCreds:
		return s.Flow == FlowStatus
	default:
		return false
	}
}
