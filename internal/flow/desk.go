package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/benbell/shopbot/internal/admin"
	"github.com/benbell/shopbot/internal/apperrors"
	"github.com/benbell/shopbot/internal/domain"
	"github.com/benbell/shopbot/internal/i18n"
	"github.com/benbell/shopbot/internal/order"
	"github.com/benbell/shopbot/internal/session"
)

// Operator acknowledgement texts, single-operator so not localized.
const (
	deskApprovedAck = "✅ Подтверждено: %s"
	deskRejectedAck = "❌ Отклонено: %s"
	deskGoneText    = "Заявка не найдена или уже обработана."
)

// Desk processes operator verdicts on pending orders. A verdict is
// terminal: the first decision on a token wins and later ones find
// nothing to resolve.
type Desk struct {
	sessions *session.Store
	orders   *order.Table
	operator *admin.Binding
	i18n     *i18n.Manager
	menus    *Menus
	out      Outbox
	support  string
	log      *slog.Logger
}

// NewDesk assembles the decision desk from the machine's collaborators.
func NewDesk(p Params) *Desk {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	return &Desk{
		sessions: p.Sessions,
		orders:   p.Orders,
		operator: p.Operator,
		i18n:     p.Translations,
		menus:    NewMenus(p.Catalog),
		out:      p.Outbox,
		support:  p.Payment.SupportContact,
		log:      log,
	}
}

// HandleDecision applies an approve or reject verdict. The caller must be
// the bound operator; anyone else is refused without touching the order.
func (d *Desk) HandleDecision(ctx context.Context, dec Decision) error {
	if !d.operator.IsOperator(dec.Caller.ID) {
		d.log.Warn("decision from non-operator",
			slog.Int64("caller_id", dec.Caller.ID),
			slog.String("token", dec.Token))
		return apperrors.NewPermissionError("order decision from non-operator")
	}

	pending, ok := d.orders.Resolve(dec.Token)
	if !ok {
		if err := d.out.Notify(ctx, dec.Caller.ID, deskGoneText); err != nil {
			d.log.Warn("operator notify failed", slog.Any("error", err))
		}
		return apperrors.NewNotFoundError("pending order not found or already resolved")
	}

	if dec.Approve {
		decisionRecorder("approved")
		return d.approve(ctx, dec, pending)
	}
	decisionRecorder("rejected")
	return d.reject(ctx, dec, pending)
}

func (d *Desk) approve(ctx context.Context, dec Decision, pending domain.PendingOrder) error {
	sess := d.sessions.GetOrCreate(pending.UserID)
	t := d.i18n.Translator(string(sess.Language))

	var text string
	if pending.Kind == domain.OrderSubscription {
		text = t.Tf("decision.approved_sub", pending.TermMonths)
	} else {
		text = t.Tf("decision.approved_topup", pending.AmountUSD)
	}

	if err := d.out.Send(ctx, pending.UserID, text, d.menus.Main(t)); err != nil {
		// The verdict stands even if the user is unreachable; the
		// operator still gets the acknowledgement.
		d.log.Error("approval notice undelivered",
			slog.Int64("user_id", pending.UserID),
			slog.String("token", pending.Token),
			slog.Any("error", err))
	}

	d.log.Info("order approved",
		slog.String("token", pending.Token),
		slog.String("kind", string(pending.Kind)),
		slog.Int64("user_id", pending.UserID))

	if err := d.out.Send(ctx, dec.Caller.ID, fmt.Sprintf(deskApprovedAck, pending.Token), nil); err != nil {
		return apperrors.NewTransportError("operator ack", err)
	}
	return d.out.Notify(ctx, dec.Caller.ID, "OK")
}

func (d *Desk) reject(ctx context.Context, dec Decision, pending domain.PendingOrder) error {
	sess := d.sessions.GetOrCreate(pending.UserID)
	t := d.i18n.Translator(string(sess.Language))

	text := t.Tf("decision.rejected", d.support)
	if err := d.out.Send(ctx, pending.UserID, text, d.menus.Main(t)); err != nil {
		d.log.Error("rejection notice undelivered",
			slog.Int64("user_id", pending.UserID),
			slog.String("token", pending.Token),
			slog.Any("error", err))
	}

	d.log.Info("order rejected",
		slog.String("token", pending.Token),
		slog.String("kind", string(pending.Kind)),
		slog.Int64("user_id", pending.UserID))

	if err := d.out.Send(ctx, dec.Caller.ID, fmt.Sprintf(deskRejectedAck, pending.Token), nil); err != nil {
		return apperrors.NewTransportError("operator ack", err)
	}
	return d.out.Notify(ctx, dec.Caller.ID, "OK")
}
