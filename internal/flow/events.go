// Package flow implements the conversation state machine that drives the
// purchase and top-up journeys, and the operator decision desk.
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benbell/shopbot/internal/domain"
)

// EventKind categorizes an inbound user event.
type EventKind string

const (
	EventStart           EventKind = "start"
	EventHome            EventKind = "home"
	EventCancel          EventKind = "cancel"
	EventBackPrev        EventKind = "back_prev"
	EventBackPay         EventKind = "back_pay"
	EventSelectLanguage  EventKind = "select_language"
	EventMenuAction      EventKind = "menu_action"
	EventSelectTerm      EventKind = "select_term"
	EventSelectTopup     EventKind = "select_topup"
	EventSelectPayMethod EventKind = "select_pay_method"
	EventSelectCoin      EventKind = "select_coin"
	EventFreeText        EventKind = "free_text"
	EventPhotoUpload     EventKind = "photo_upload"
	EventDocumentUpload  EventKind = "document_upload"
	EventAdminBind       EventKind = "admin_bind"
)

// MenuAction is a main-menu entry.
type MenuAction string

const (
	ActionBuySubscription MenuAction = "buy_sub"
	ActionTopup           MenuAction = "topup"
	ActionStatus          MenuAction = "status"
	ActionSupport         MenuAction = "support"
)

// Callback data namespaces. The wire format is namespace:action[:params].
const (
	nsLanguage = "lang"
	nsMenu     = "menu"
	nsNav      = "nav"
	nsSub      = "sub"
	nsTopup    = "topup"
	nsPay      = "pay"
	nsCoin     = "coin"
	nsAdmin    = "adm"
)

// UserRef identifies the user an event originates from.
type UserRef struct {
	ID       int64
	Username string
	FullName string
}

// Label renders the operator-facing identification line for the user.
func (u UserRef) Label() string {
	username := "(no username)"
	if u.Username != "" {
		username = "@" + u.Username
	}
	return fmt.Sprintf("%s | id=%d | %s", username, u.ID, u.FullName)
}

// AttachmentKind distinguishes uploaded receipt types.
type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is an opaque reference to an uploaded file that the transport
// can re-send to another recipient.
type Attachment struct {
	Kind   AttachmentKind
	FileID string
}

// Event is one inbound user action after transport-boundary parsing.
type Event struct {
	Kind       EventKind
	User       UserRef
	Language   domain.Language
	Action     MenuAction
	TermMonths int
	CustomTerm bool
	AmountUSD  int
	PayMethod  domain.PayMethod
	Coin       domain.Coin
	Text       string
	Attachment *Attachment
}

// Decision is an operator verdict on a pending order.
type Decision struct {
	Caller  UserRef
	Token   string
	Approve bool
}

// ErrUnknownCallback marks callback payloads that do not parse. They are
// ignored with a log line, never partially applied.
type ErrUnknownCallback struct {
	Data string
}

func (e *ErrUnknownCallback) Error() string {
	return fmt.Sprintf("unknown callback payload: %q", e.Data)
}

// ParseCallback turns raw callback data into a typed Event. Parsing fails
// closed: any payload it does not fully recognize yields an error.
func ParseCallback(user UserRef, data string) (Event, error) {
	data = strings.TrimSpace(data)

	namespace, rest, found := strings.Cut(data, ":")
	if !found || rest == "" {
		return Event{}, &ErrUnknownCallback{Data: data}
	}

	ev := Event{User: user}

	switch namespace {
	case nsLanguage:
		switch domain.Language(rest) {
		case domain.LangRU, domain.LangEN:
			ev.Kind = EventSelectLanguage
			ev.Language = domain.Language(rest)
			return ev, nil
		}

	case nsMenu:
		switch MenuAction(rest) {
		case ActionBuySubscription, ActionTopup, ActionStatus, ActionSupport:
			ev.Kind = EventMenuAction
			ev.Action = MenuAction(rest)
			return ev, nil
		}

	case nsNav:
		switch rest {
		case "home":
			ev.Kind = EventHome
			return ev, nil
		case "cancel":
			ev.Kind = EventCancel
			return ev, nil
		case "back_prev":
			ev.Kind = EventBackPrev
			return ev, nil
		case "back_pay":
			ev.Kind = EventBackPay
			return ev, nil
		}

	case nsSub:
		ev.Kind = EventSelectTerm
		if rest == "custom" {
			ev.CustomTerm = true
			return ev, nil
		}
		term, err := strconv.Atoi(rest)
		if err != nil || term <= 0 {
			break
		}
		ev.TermMonths = term
		return ev, nil

	case nsTopup:
		amount, err := strconv.Atoi(rest)
		if err != nil || amount <= 0 {
			break
		}
		ev.Kind = EventSelectTopup
		ev.AmountUSD = amount
		return ev, nil

	case nsPay:
		switch rest {
		case "bank":
			ev.Kind = EventSelectPayMethod
			ev.PayMethod = domain.PayBankTransfer
			return ev, nil
		case "crypto":
			ev.Kind = EventSelectPayMethod
			ev.PayMethod = domain.PayCrypto
			return ev, nil
		}

	case nsCoin:
		switch domain.Coin(rest) {
		case domain.CoinUSDTTRC20, domain.CoinBTC, domain.CoinETH:
			ev.Kind = EventSelectCoin
			ev.Coin = domain.Coin(rest)
			return ev, nil
		}
	}

	return Event{}, &ErrUnknownCallback{Data: data}
}

// ParseDecision turns operator callback data (adm:approve:<token>) into a
// Decision. Non-operator namespaces yield false.
func ParseDecision(caller UserRef, data string) (Decision, bool, error) {
	data = strings.TrimSpace(data)

	namespace, rest, found := strings.Cut(data, ":")
	if !found || namespace != nsAdmin {
		return Decision{}, false, nil
	}

	action, token, found := strings.Cut(rest, ":")
	if !found || token == "" {
		return Decision{}, true, &ErrUnknownCallback{Data: data}
	}

	switch action {
	case "approve":
		return Decision{Caller: caller, Token: token, Approve: true}, true, nil
	case "reject":
		return Decision{Caller: caller, Token: token, Approve: false}, true, nil
	}
	return Decision{}, true, &ErrUnknownCallback{Data: data}
}

// CallbackData builds the wire payload for a namespace and action parts.
func CallbackData(namespace string, parts ...string) string {
	if len(parts) == 0 {
		return namespace
	}
	return namespace + ":" + strings.Join(parts, ":")
}
