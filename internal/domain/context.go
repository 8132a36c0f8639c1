package domain

import "time"

// Context switch parameter names accepted by the switch endpoints.
const (
	ParamLanguageID         = "languageId"
	ParamCurrencyID         = "currencyId"
	ParamShippingMethodID   = "shippingMethodId"
	ParamPaymentMethodID    = "paymentMethodId"
	ParamCountryID          = "countryId"
	ParamCountryStateID     = "countryStateId"
	ParamRedirectTo         = "redirectTo"
	ParamRedirectParameters = "redirectParameters"
	ParamForwardTo          = "forwardTo"
)

// SalesChannelContext is the per-visitor state identified by a context token.
type SalesChannelContext struct {
	Token            string    `json:"token"`
	SalesChannelID   string    `json:"sales_channel_id"`
	DomainID         string    `json:"domain_id"`
	LanguageID       string    `json:"language_id"`
	CurrencyID       string    `json:"currency_id"`
	CountryID        string    `json:"country_id,omitempty"`
	CountryStateID   string    `json:"country_state_id,omitempty"`
	ShippingMethodID string    `json:"shipping_method_id,omitempty"`
	PaymentMethodID  string    `json:"payment_method_id,omitempty"`
	CustomerID       string    `json:"customer_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LoggedIn reports whether a customer is attached to the context.
func (c *SalesChannelContext) LoggedIn() bool {
	return c != nil && c.CustomerID != ""
}

// ContextSwitch is a set of overrides for the current context. Keys are the
// Param* names; values are passed through untouched.
type ContextSwitch map[string]string

// Has reports whether key was submitted, even when empty.
func (s ContextSwitch) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// ContextSwitchResult is returned by a successful switch. RedirectURL is set
// when the new context lives on another sales channel domain.
type ContextSwitchResult struct {
	Token       string `json:"contextToken"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// SalesChannelDomain is one URL a sales channel is served under.
type SalesChannelDomain struct {
	ID             string `json:"id"`
	SalesChannelID string `json:"sales_channel_id"`
	LanguageID     string `json:"language_id"`
	CurrencyID     string `json:"currency_id"`
	SnippetSetID   string `json:"snippet_set_id"`
	Locale         string `json:"locale"`
	URL            string `json:"url"`
}

// Language is a language a sales channel offers.
type Language struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}
