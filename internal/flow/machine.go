package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/benbell/shopbot/internal/admin"
	"github.com/benbell/shopbot/internal/apperrors"
	"github.com/benbell/shopbot/internal/domain"
	"github.com/benbell/shopbot/internal/i18n"
	"github.com/benbell/shopbot/internal/order"
	"github.com/benbell/shopbot/internal/pricing"
	"github.com/benbell/shopbot/internal/profile"
	"github.com/benbell/shopbot/internal/session"
)

const opTimeLayout = "2006-01-02 15:04:05"

// Operator-facing texts are intentionally not localized: there is a single
// operator and the submission headers match what the support team expects.
const (
	opBoundText        = "✅ Оператор привязан. Теперь заявки будут приходить сюда."
	opAlreadyBoundText = "❗ Оператор уже привязан."
)

// PaymentInfo carries the payment rail details rendered into prompts.
type PaymentInfo struct {
	BankName     string
	BankReceiver string
	BankAccount  string

	CoinAddresses map[domain.Coin]string

	SupportContact string
	SupportURL     string

	// Optional after-hours window: outside [WorkdayStartHour,
	// WorkdayEndHour) proof acknowledgements carry a delay notice.
	// Both zero disables the notice.
	WorkdayStartHour int
	WorkdayEndHour   int
}

// Address returns the deposit address for a coin.
func (p PaymentInfo) Address(coin domain.Coin) string {
	if addr, ok := p.CoinAddresses[coin]; ok && addr != "" {
		return addr
	}
	return "ADDRESS_NOT_SET"
}

// Params bundles the collaborators a Machine needs.
type Params struct {
	Sessions     *session.Store
	Orders       *order.Table
	Tokens       *order.TokenSource
	Catalog      *pricing.Catalog
	Operator     *admin.Binding
	Profiles     profile.Finder // optional; nil forwards status lookups to the operator
	Translations *i18n.Manager
	Outbox       Outbox
	Payment      PaymentInfo
	Log          *slog.Logger
}

// Machine is the per-user conversation state machine. It consumes parsed
// events, mutates sessions, creates pending orders, and emits messages
// through the Outbox. One Machine serves every user; per-user isolation
// comes from the session store keying.
type Machine struct {
	sessions *session.Store
	orders   *order.Table
	tokens   *order.TokenSource
	catalog  *pricing.Catalog
	operator *admin.Binding
	profiles profile.Finder
	i18n     *i18n.Manager
	menus    *Menus
	out      Outbox
	payment  PaymentInfo
	log      *slog.Logger
	now      func() time.Time
}

// NewMachine assembles the conversation machine.
func NewMachine(p Params) *Machine {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		sessions: p.Sessions,
		orders:   p.Orders,
		tokens:   p.Tokens,
		catalog:  p.Catalog,
		operator: p.Operator,
		profiles: p.Profiles,
		i18n:     p.Translations,
		menus:    NewMenus(p.Catalog),
		out:      p.Outbox,
		payment:  p.Payment,
		log:      log,
		now:      time.Now,
	}
}

// HandleEvent runs one inbound event through the transition table.
func (m *Machine) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventStart:
		return m.handleStart(ctx, ev)
	case EventAdminBind:
		return m.handleAdminBind(ctx, ev)
	case EventHome:
		return m.handleHome(ctx, ev)
	case EventCancel:
		return m.handleCancel(ctx, ev)
	case EventBackPrev:
		return m.handleBackPrev(ctx, ev)
	case EventBackPay:
		return m.handleBackPay(ctx, ev)
	case EventSelectLanguage:
		return m.handleLanguage(ctx, ev)
	case EventMenuAction:
		return m.handleMenuAction(ctx, ev)
	case EventSelectTerm:
		return m.handleTerm(ctx, ev)
	case EventSelectTopup:
		return m.handleTopupAmount(ctx, ev)
	case EventSelectPayMethod:
		return m.handlePayMethod(ctx, ev)
	case EventSelectCoin:
		return m.handleCoin(ctx, ev)
	case EventFreeText:
		return m.handleText(ctx, ev)
	case EventPhotoUpload, EventDocumentUpload:
		return m.handleAttachment(ctx, ev)
	default:
		m.log.Warn("unhandled event kind", slog.String("kind", string(ev.Kind)))
		return nil
	}
}

func (m *Machine) handleStart(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)
	return m.out.Send(ctx, ev.User.ID, t.T("menu.choose_language"), m.menus.Language())
}

func (m *Machine) handleAdminBind(ctx context.Context, ev Event) error {
	if !m.operator.Bind(ev.User.ID) {
		return m.out.Send(ctx, ev.User.ID, opAlreadyBoundText, nil)
	}

	m.log.Info("operator bound", slog.Int64("operator_id", ev.User.ID))
	return m.out.Send(ctx, ev.User.ID, opBoundText, nil)
}

func (m *Machine) handleHome(ctx context.Context, ev Event) error {
	sess := m.reset(ctx, ev.User.ID)
	t := m.translator(sess)
	return m.out.Edit(ctx, ev.User.ID, t.T("menu.main"), m.menus.Main(t))
}

func (m *Machine) handleCancel(ctx context.Context, ev Event) error {
	sess := m.reset(ctx, ev.User.ID)
	t := m.translator(sess)
	return m.out.Edit(ctx, ev.User.ID, t.T("menu.cancelled"), m.menus.Main(t))
}

func (m *Machine) handleLanguage(ctx context.Context, ev Event) error {
	sess := m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
		s.Language = ev.Language
		s.ResetFlow()
	})
	t := m.translator(sess)
	return m.out.Edit(ctx, ev.User.ID, t.T("menu.main"), m.menus.Main(t))
}

func (m *Machine) handleBackPrev(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)

	switch sess.Flow {
	case domain.FlowSubscription:
		return m.out.Edit(ctx, ev.User.ID, t.T("sub.choose"), m.menus.SubscriptionTerms(t))
	case domain.FlowTopup:
		return m.out.Edit(ctx, ev.User.ID, t.T("topup.choose"), m.menus.TopupAmounts(t))
	default:
		return m.out.Edit(ctx, ev.User.ID, t.T("menu.main"), m.menus.Main(t))
	}
}

func (m *Machine) handleBackPay(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)
	return m.out.Edit(ctx, ev.User.ID, t.T("pay.choose"), m.menus.PayMethods(t))
}

func (m *Machine) handleMenuAction(ctx context.Context, ev Event) error {
	switch ev.Action {
	case ActionBuySubscription:
		sess := m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
			s.ResetFlow()
			s.Flow = domain.FlowSubscription
		})
		t := m.translator(sess)
		return m.out.Edit(ctx, ev.User.ID, t.T("sub.choose"), m.menus.SubscriptionTerms(t))

	case ActionTopup:
		sess := m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
			s.ResetFlow()
			s.Flow = domain.FlowTopup
		})
		t := m.translator(sess)
		return m.out.Edit(ctx, ev.User.ID, t.T("topup.choose"), m.menus.TopupAmounts(t))

	case ActionSupport:
		sess := m.sessions.GetOrCreate(ev.User.ID)
		t := m.translator(sess)
		text := t.Tf("support.text", m.payment.SupportContact)
		return m.out.Edit(ctx, ev.User.ID, text, m.menus.Support(t, m.payment.SupportURL))

	case ActionStatus:
		sess := m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
			s.ResetFlow()
			s.Flow = domain.FlowStatus
			s.Step = domain.StepAwaitStatusCreds
		})
		t := m.translator(sess)
		return m.out.Edit(ctx, ev.User.ID, t.T("status.ask"), m.menus.CancelPayment(t))

	default:
		m.log.Warn("unknown menu action", slog.String("action", string(ev.Action)))
		return nil
	}
}

func (m *Machine) handleTerm(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)

	if ev.CustomTerm {
		if !m.operator.Bound() {
			return m.out.Edit(ctx, ev.User.ID, t.T("operator.unbound"), m.menus.CancelPayment(t))
		}

		token := m.tokens.Next(ev.User.ID)
		summary := fmt.Sprintf("🟣 CUSTOM REQUEST\nTime: %s\nOrder: %s\nUser: %s\n",
			m.timestamp(), token, ev.User.Label())
		if err := m.out.Send(ctx, m.operator.ID(), summary, nil); err != nil {
			return apperrors.NewTransportError("custom request", err)
		}

		return m.out.Edit(ctx, ev.User.ID, t.T("sub.custom_sent"), m.menus.Main(t))
	}

	quote, ok := m.catalog.SubscriptionQuote(ev.TermMonths)
	if !ok {
		m.log.Warn("term not in catalog", slog.Int("term", ev.TermMonths))
		return nil
	}

	sess = m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
		s.Flow = domain.FlowSubscription
		s.TermMonths = ev.TermMonths
		s.OrderToken = m.tokens.Next(ev.User.ID)
	})
	t = m.translator(sess)

	text := t.Tf("sub.summary", sess.TermMonths, quote.Local, quote.USD)
	return m.out.Edit(ctx, ev.User.ID, text, m.menus.PayMethods(t))
}

func (m *Machine) handleTopupAmount(ctx context.Context, ev Event) error {
	quote, ok := m.catalog.TopupQuote(ev.AmountUSD)
	if !ok {
		m.log.Warn("topup amount not in catalog", slog.Int("amount_usd", ev.AmountUSD))
		return nil
	}

	sess := m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
		s.Flow = domain.FlowTopup
		s.TopupUSD = ev.AmountUSD
		s.OrderToken = m.tokens.Next(ev.User.ID)
		s.Step = domain.StepAwaitTopupEmail
	})
	t := m.translator(sess)

	text := t.Tf("topup.ask_email", quote.USD, quote.Local)
	return m.out.Edit(ctx, ev.User.ID, text, m.menus.CancelPayment(t))
}

func (m *Machine) handlePayMethod(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)

	switch sess.Flow {
	case domain.FlowTopup:
		// precondition: the topup email must be captured first
		if sess.Email == "" {
			return m.out.Notify(ctx, ev.User.ID, t.T("topup.email_first"))
		}
		quote, ok := m.catalog.TopupQuote(sess.TopupUSD)
		if !ok {
			// amount dropped from the catalog since it was chosen
			m.log.Warn("session topup amount not in catalog", slog.Int("amount_usd", sess.TopupUSD))
			sess = m.reset(ctx, ev.User.ID)
			t = m.translator(sess)
			m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Flow = domain.FlowTopup })
			return m.out.Edit(ctx, ev.User.ID, t.T("topup.choose"), m.menus.TopupAmounts(t))
		}
		return m.promptForProof(ctx, ev, sess, t, quote)

	case domain.FlowSubscription:
		if sess.TermMonths == 0 {
			return m.out.Notify(ctx, ev.User.ID, t.T("pay.term_first"))
		}
		quote, ok := m.catalog.SubscriptionQuote(sess.TermMonths)
		if !ok {
			m.log.Warn("session term not in catalog", slog.Int("term", sess.TermMonths))
			sess = m.reset(ctx, ev.User.ID)
			t = m.translator(sess)
			m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Flow = domain.FlowSubscription })
			return m.out.Edit(ctx, ev.User.ID, t.T("sub.choose"), m.menus.SubscriptionTerms(t))
		}
		return m.promptForProof(ctx, ev, sess, t, quote)

	default:
		return nil
	}
}

// promptForProof records the chosen rail and shows either the bank transfer
// instructions or the coin picker.
func (m *Machine) promptForProof(ctx context.Context, ev Event, sess domain.Session, t i18n.Translator, quote pricing.Quote) error {
	switch ev.PayMethod {
	case domain.PayBankTransfer:
		sess = m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
			s.PayMethod = domain.PayBankTransfer
			s.Step = domain.StepAwaitReceipt
		})

		var text string
		if sess.Flow == domain.FlowSubscription {
			text = t.Tf("pay.bank_sub", sess.TermMonths, quote.Local, quote.USD,
				m.payment.BankName, m.payment.BankReceiver, m.payment.BankAccount)
		} else {
			text = t.Tf("pay.bank_topup", quote.USD, quote.Local, sess.Email,
				m.payment.BankName, m.payment.BankReceiver, m.payment.BankAccount)
		}
		return m.out.Edit(ctx, ev.User.ID, text, m.menus.CancelPayment(t))

	case domain.PayCrypto:
		sess = m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
			s.PayMethod = domain.PayCrypto
			s.Step = domain.StepChoosingCoin
		})

		var text string
		if sess.Flow == domain.FlowSubscription {
			text = t.Tf("pay.crypto_sub", sess.TermMonths, quote.Local, quote.USD)
		} else {
			text = t.Tf("pay.crypto_topup", quote.USD, quote.Local, sess.Email)
		}
		return m.out.Edit(ctx, ev.User.ID, text, m.menus.Coins(t))

	default:
		return nil
	}
}

func (m *Machine) handleCoin(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	if sess.PayMethod != domain.PayCrypto {
		m.log.Warn("coin selected outside crypto rail",
			slog.Int64("user_id", ev.User.ID),
			slog.String("step", string(sess.Step)))
		return nil
	}

	sess = m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
		s.Coin = ev.Coin
		s.Step = domain.StepAwaitTxID
	})
	t := m.translator(sess)
	address := m.payment.Address(sess.Coin)

	var text string
	if sess.Flow == domain.FlowSubscription {
		quote, _ := m.catalog.SubscriptionQuote(sess.TermMonths)
		text = t.Tf("coin.instructions_sub", sess.TermMonths, quote.Local, quote.USD, coinLabel(sess.Coin), address)
	} else {
		quote, _ := m.catalog.TopupQuote(sess.TopupUSD)
		text = t.Tf("coin.instructions_topup", quote.USD, quote.Local, sess.Email, coinLabel(sess.Coin), address)
	}
	return m.out.Edit(ctx, ev.User.ID, text, m.menus.CancelPayment(t))
}

func (m *Machine) handleText(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)

	switch {
	case sess.Step == domain.StepAwaitStatusCreds:
		return m.handleStatusCreds(ctx, ev, sess, t)

	case sess.Step == domain.StepAwaitTopupEmail:
		return m.handleTopupEmail(ctx, ev, sess, t)

	case sess.Flow == domain.FlowTopup && sess.Email == "" && validEmail(ev.Text):
		// The recorded step was lost (e.g. restart without a durable
		// snapshot) but the message is unmistakably the topup email.
		// Content-based recovery takes precedence over strict step
		// matching for this one transition.
		m.log.Info("recovered lost topup email step", slog.Int64("user_id", ev.User.ID))
		return m.handleTopupEmail(ctx, ev, sess, t)

	case sess.Step == domain.StepAwaitTxID:
		return m.handleTxID(ctx, ev, sess, t)

	case sess.Step == domain.StepAwaitReceipt:
		return m.out.Send(ctx, ev.User.ID, t.T("proof.receipt_format"), m.menus.CancelPayment(t))

	default:
		return m.out.Send(ctx, ev.User.ID, t.T("menu.fallback"), m.menus.Main(t))
	}
}

func (m *Machine) handleTopupEmail(ctx context.Context, ev Event, sess domain.Session, t i18n.Translator) error {
	email := strings.TrimSpace(ev.Text)
	if !validEmail(email) {
		return m.out.Send(ctx, ev.User.ID, t.T("topup.email_invalid"), m.menus.CancelPayment(t))
	}

	quote, ok := m.catalog.TopupQuote(sess.TopupUSD)
	if !ok {
		// amount lost together with the step; restart amount selection
		sess = m.reset(ctx, ev.User.ID)
		t = m.translator(sess)
		m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Flow = domain.FlowTopup })
		return m.out.Send(ctx, ev.User.ID, t.T("topup.choose"), m.menus.TopupAmounts(t))
	}

	m.mutate(ctx, ev.User.ID, func(s *domain.Session) {
		s.Email = email
		s.Step = domain.StepNone
	})

	text := t.Tf("topup.email_saved", email, quote.USD, quote.Local)
	return m.out.Send(ctx, ev.User.ID, text, m.menus.PayMethods(t))
}

func (m *Machine) handleTxID(ctx context.Context, ev Event, sess domain.Session, t i18n.Translator) error {
	txid := strings.TrimSpace(ev.Text)
	if !validTxID(txid) {
		return m.out.Send(ctx, ev.User.ID, t.T("proof.txid_invalid"), m.menus.CancelPayment(t))
	}

	if !m.operator.Bound() {
		return m.out.Send(ctx, ev.User.ID, t.T("operator.unbound"), m.menus.CancelPayment(t))
	}

	token := sess.OrderToken
	if token == "" {
		token = m.tokens.Next(ev.User.ID)
		m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.OrderToken = token })
	}

	pending, summary := m.buildSubmission(ev, sess, token, fmt.Sprintf("Coin: %s\nTXID: %s\n", coinLabel(sess.Coin), txid), "CRYPTO")

	m.orders.Put(pending)
	orderRecorder(string(pending.Kind))
	if err := m.out.Send(ctx, m.operator.ID(), summary, m.menus.Decision(token)); err != nil {
		m.orders.Resolve(token)
		return apperrors.NewTransportError("operator notification", err)
	}

	m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Step = domain.StepNone })
	return m.out.Send(ctx, ev.User.ID, m.withAfterHours(t, t.T("proof.txid_accepted")), m.menus.Main(t))
}

func (m *Machine) handleAttachment(ctx context.Context, ev Event) error {
	sess := m.sessions.GetOrCreate(ev.User.ID)
	t := m.translator(sess)

	if sess.Step != domain.StepAwaitReceipt {
		return m.out.Send(ctx, ev.User.ID, t.T("menu.fallback"), m.menus.Main(t))
	}

	if !m.operator.Bound() {
		return m.out.Send(ctx, ev.User.ID, t.T("operator.unbound"), m.menus.CancelPayment(t))
	}

	token := sess.OrderToken
	if token == "" {
		token = m.tokens.Next(ev.User.ID)
		m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.OrderToken = token })
	}

	pending, caption := m.buildSubmission(ev, sess, token, "", "BANK")

	m.orders.Put(pending)
	orderRecorder(string(pending.Kind))
	if err := m.out.SendAttachment(ctx, m.operator.ID(), *ev.Attachment, caption, m.menus.Decision(token)); err != nil {
		m.orders.Resolve(token)
		return apperrors.NewTransportError("operator notification", err)
	}

	m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Step = domain.StepNone })
	return m.out.Send(ctx, ev.User.ID, m.withAfterHours(t, t.T("proof.receipt_accepted")), m.menus.Main(t))
}

func (m *Machine) handleStatusCreds(ctx context.Context, ev Event, sess domain.Session, t i18n.Translator) error {
	text := strings.TrimSpace(ev.Text)

	rawEmail, rawKey, found := strings.Cut(text, "|")
	if !found {
		return m.out.Send(ctx, ev.User.ID, t.T("status.format"), m.menus.CancelPayment(t))
	}

	email := strings.TrimSpace(rawEmail)
	key := strings.TrimSpace(rawKey)
	if !validEmail(email) || len(key) < 4 {
		return m.out.Send(ctx, ev.User.ID, t.T("status.invalid"), m.menus.CancelPayment(t))
	}

	if m.profiles != nil {
		p, err := m.profiles.Find(ctx, email, key)
		switch {
		case err == nil:
			m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Step = domain.StepNone })
			reply := t.Tf("status.profile", p.BalanceUSD, p.LicenseKey, p.ValidUntil.Format("2006-01-02"))
			return m.out.Send(ctx, ev.User.ID, reply, m.menus.Main(t))

		case errors.Is(err, profile.ErrNotFound):
			m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Step = domain.StepNone })
			return m.out.Send(ctx, ev.User.ID, t.T("status.not_found"), m.menus.Main(t))

		default:
			m.log.Error("profile lookup failed, forwarding to operator", slog.Any("error", err))
		}
	}

	if m.operator.Bound() {
		summary := fmt.Sprintf("🔵 STATUS REQUEST\nTime: %s\nUser: %s\nEmail: %s\nKey: %s\n",
			m.timestamp(), ev.User.Label(), email, key)
		if err := m.out.Send(ctx, m.operator.ID(), summary, nil); err != nil {
			return apperrors.NewTransportError("status request", err)
		}
	}

	m.mutate(ctx, ev.User.ID, func(s *domain.Session) { s.Step = domain.StepNone })
	return m.out.Send(ctx, ev.User.ID, t.T("status.forwarded"), m.menus.Main(t))
}

// buildSubmission assembles the pending order and the operator summary for
// an accepted proof of payment.
func (m *Machine) buildSubmission(ev Event, sess domain.Session, token, proofLines, rail string) (domain.PendingOrder, string) {
	marker := "🟢"
	if rail == "BANK" {
		marker = "🟠"
	}

	if sess.Flow == domain.FlowSubscription {
		quote, _ := m.catalog.SubscriptionQuote(sess.TermMonths)
		pending := domain.PendingOrder{
			Token:      token,
			Kind:       domain.OrderSubscription,
			UserID:     ev.User.ID,
			TermMonths: sess.TermMonths,
			CreatedAt:  m.now(),
		}
		summary := fmt.Sprintf(
			"%s PAYMENT (%s) — SUBSCRIPTION\nTime: %s\nOrder: %s\nUser: %s\nSubscription: %d months\nAmount: %d RUB (≈ $%d)\n%s",
			marker, rail, m.timestamp(), token, ev.User.Label(), sess.TermMonths, quote.Local, quote.USD, proofLines)
		return pending, summary
	}

	quote, _ := m.catalog.TopupQuote(sess.TopupUSD)
	pending := domain.PendingOrder{
		Token:     token,
		Kind:      domain.OrderTopup,
		UserID:    ev.User.ID,
		AmountUSD: sess.TopupUSD,
		Email:     sess.Email,
		CreatedAt: m.now(),
	}
	summary := fmt.Sprintf(
		"%s PAYMENT (%s) — TOPUP\nTime: %s\nOrder: %s\nUser: %s\nEmail: %s\nTopup: $%d (≈ %d RUB)\n%s",
		marker, rail, m.timestamp(), token, ev.User.Label(), sess.Email, quote.USD, quote.Local, proofLines)
	return pending, summary
}

func (m *Machine) translator(sess domain.Session) i18n.Translator {
	return m.i18n.Translator(string(sess.Language))
}

func (m *Machine) timestamp() string {
	return m.now().Format(opTimeLayout)
}

func (m *Machine) withAfterHours(t i18n.Translator, text string) string {
	start, end := m.payment.WorkdayStartHour, m.payment.WorkdayEndHour
	if start == 0 && end == 0 {
		return text
	}

	hour := m.now().Hour()
	if hour >= start && hour < end {
		return text
	}
	return text + "\n" + t.T("proof.after_hours")
}

// reset restores the session defaults, keeping the language sticky.
func (m *Machine) reset(ctx context.Context, userID int64) domain.Session {
	return m.mutate(ctx, userID, func(s *domain.Session) {
		s.ResetFlow()
	})
}

// mutate applies fn through the session store and records step transitions.
func (m *Machine) mutate(ctx context.Context, userID int64, fn func(*domain.Session)) domain.Session {
	before := m.sessions.GetOrCreate(userID)
	after := m.sessions.Update(ctx, userID, fn)
	if before.Step != after.Step {
		transitionRecorder(stepName(before.Step), stepName(after.Step))
	}
	return after
}

func stepName(s domain.Step) string {
	if s == domain.StepNone {
		return "idle"
	}
	return string(s)
}
