package flow

import (
	"strconv"

	"github.com/benbell/shopbot/internal/domain"
	"github.com/benbell/shopbot/internal/i18n"
	"github.com/benbell/shopbot/internal/pricing"
)

// Button is one labeled action in a rendered menu. Data buttons carry a
// callback payload, URL buttons open an external link.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Menu is a set of labeled actions arranged in rows.
type Menu struct {
	Rows [][]Button
}

func menuOf(rows ...[]Button) *Menu {
	return &Menu{Rows: rows}
}

func row(buttons ...Button) []Button {
	return buttons
}

// Menus renders the keyboards shown throughout the conversation.
type Menus struct {
	catalog *pricing.Catalog
}

// NewMenus creates a menu renderer over the given price catalog.
func NewMenus(catalog *pricing.Catalog) *Menus {
	return &Menus{catalog: catalog}
}

// Language is the initial language picker. Labels are fixed, not localized.
func (m *Menus) Language() *Menu {
	return menuOf(
		row(Button{Label: "🇷🇺 Русский", Data: CallbackData(nsLanguage, string(domain.LangRU))}),
		row(Button{Label: "🇬🇧 English", Data: CallbackData(nsLanguage, string(domain.LangEN))}),
	)
}

// Main is the idle-state menu.
func (m *Menus) Main(t i18n.Translator) *Menu {
	return menuOf(
		row(Button{Label: t.T("btn.buy_sub"), Data: CallbackData(nsMenu, string(ActionBuySubscription))}),
		row(Button{Label: t.T("btn.topup"), Data: CallbackData(nsMenu, string(ActionTopup))}),
		row(Button{Label: t.T("btn.status"), Data: CallbackData(nsMenu, string(ActionStatus))}),
		row(Button{Label: t.T("btn.support"), Data: CallbackData(nsMenu, string(ActionSupport))}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
}

// Support shows the support contact link.
func (m *Menus) Support(t i18n.Translator, supportURL string) *Menu {
	return menuOf(
		row(Button{Label: t.T("btn.contact_support"), URL: supportURL}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
}

// SubscriptionTerms lists every catalog term with its price pair.
func (m *Menus) SubscriptionTerms(t i18n.Translator) *Menu {
	menu := &Menu{}
	for _, term := range m.catalog.Terms() {
		quote, _ := m.catalog.SubscriptionQuote(term)
		menu.Rows = append(menu.Rows, row(Button{
			Label: termLabel(t, term, quote),
			Data:  CallbackData(nsSub, strconv.Itoa(term)),
		}))
	}
	menu.Rows = append(menu.Rows,
		row(Button{Label: t.T("btn.custom"), Data: CallbackData(nsSub, "custom")}),
		row(Button{Label: t.T("btn.back"), Data: CallbackData(nsNav, "home")}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
	return menu
}

// TopupAmounts lists every catalog top-up amount with its price pair.
func (m *Menus) TopupAmounts(t i18n.Translator) *Menu {
	menu := &Menu{}
	for _, usd := range m.catalog.Topups() {
		quote, _ := m.catalog.TopupQuote(usd)
		menu.Rows = append(menu.Rows, row(Button{
			Label: t.Tf("topup.amount_label", quote.USD, quote.Local),
			Data:  CallbackData(nsTopup, strconv.Itoa(usd)),
		}))
	}
	menu.Rows = append(menu.Rows,
		row(Button{Label: t.T("btn.back"), Data: CallbackData(nsNav, "home")}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
	return menu
}

// PayMethods offers the two payment rails.
func (m *Menus) PayMethods(t i18n.Translator) *Menu {
	return menuOf(
		row(Button{Label: t.T("btn.bank"), Data: CallbackData(nsPay, "bank")}),
		row(Button{Label: t.T("btn.crypto"), Data: CallbackData(nsPay, "crypto")}),
		row(Button{Label: t.T("btn.back"), Data: CallbackData(nsNav, "back_prev")}),
		row(Button{Label: t.T("btn.cancel"), Data: CallbackData(nsNav, "cancel")}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
}

// Coins offers the supported cryptocurrencies.
func (m *Menus) Coins(t i18n.Translator) *Menu {
	menu := &Menu{}
	for _, coin := range []domain.Coin{domain.CoinUSDTTRC20, domain.CoinBTC, domain.CoinETH} {
		menu.Rows = append(menu.Rows, row(Button{
			Label: coinLabel(coin),
			Data:  CallbackData(nsCoin, string(coin)),
		}))
	}
	menu.Rows = append(menu.Rows,
		row(Button{Label: t.T("btn.back"), Data: CallbackData(nsNav, "back_pay")}),
		row(Button{Label: t.T("btn.cancel"), Data: CallbackData(nsNav, "cancel")}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
	return menu
}

// CancelPayment accompanies every prompt that waits for free-form input.
func (m *Menus) CancelPayment(t i18n.Translator) *Menu {
	return menuOf(
		row(Button{Label: t.T("btn.cancel"), Data: CallbackData(nsNav, "cancel")}),
		row(Button{Label: t.T("btn.home"), Data: CallbackData(nsNav, "home")}),
	)
}

// Decision is the operator's approve/reject control for one order token.
func (m *Menus) Decision(token string) *Menu {
	return menuOf(row(
		Button{Label: "✅ Подтвердить", Data: CallbackData(nsAdmin, "approve", token)},
		Button{Label: "❌ Отклонить", Data: CallbackData(nsAdmin, "reject", token)},
	))
}

func termLabel(t i18n.Translator, term int, quote pricing.Quote) string {
	switch term {
	case 1:
		return t.Tf("sub.term_one", quote.USD, quote.Local)
	case 12:
		return t.Tf("sub.term_year", quote.USD, quote.Local)
	default:
		return t.Tf("sub.term_months", term, quote.USD, quote.Local)
	}
}

func coinLabel(coin domain.Coin) string {
	if coin == domain.CoinUSDTTRC20 {
		return "USDT TRC20"
	}
	return string(coin)
}
