package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/routing"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// switchInput lists the ids a context switch accepts.
type switchInput struct {
	LanguageID       string `json:"languageId" validate:"omitempty,uuid"`
	CurrencyID       string `json:"currencyId" validate:"omitempty,uuid"`
	ShippingMethodID string `json:"shippingMethodId" validate:"omitempty,uuid"`
	PaymentMethodID  string `json:"paymentMethodId" validate:"omitempty,uuid"`
	CountryID        string `json:"countryId" validate:"omitempty,uuid"`
	CountryStateID   string `json:"countryStateId" validate:"omitempty,uuid"`
}

// ContextService loads, creates and switches sales channel contexts.
type ContextService struct {
	contexts repository.ContextRepository
	channels repository.SalesChannelRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewContextService creates a new context service.
func NewContextService(contexts repository.ContextRepository, channels repository.SalesChannelRepository, producer *event.Producer, logger *slog.Logger) *ContextService {
	return &ContextService{
		contexts: contexts,
		channels: channels,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the context of token for the sales channel domain in
// attrs. Unknown tokens and tokens of another sales channel get a fresh
// context with the domain defaults. Entering another domain of the same
// channel takes over the language of that domain.
func (s *ContextService) Resolve(ctx context.Context, token string, attrs routing.Attributes, customerID string) (*domain.SalesChannelContext, error) {
	if token != "" {
		sc, err := s.contexts.Load(ctx, token)
		switch {
		case err == nil && sc.SalesChannelID == attrs.SalesChannelID:
			return s.refresh(ctx, sc, attrs, customerID)
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("load context: %w", err)
		}
	}

	sc := &domain.SalesChannelContext{
		Token:          uuid.NewString(),
		SalesChannelID: attrs.SalesChannelID,
		DomainID:       attrs.DomainID,
		LanguageID:     attrs.LanguageID,
		CurrencyID:     attrs.CurrencyID,
		CustomerID:     customerID,
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.contexts.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("save new context: %w", err)
	}

	s.logger.DebugContext(ctx, "created sales channel context",
		slog.String("sales_channel_id", sc.SalesChannelID),
		slog.String("language_id", sc.LanguageID),
	)
	return sc, nil
}

func (s *ContextService) refresh(ctx context.Context, sc *domain.SalesChannelContext, attrs routing.Attributes, customerID string) (*domain.SalesChannelContext, error) {
	changed := false
	if attrs.DomainID != "" && sc.DomainID != attrs.DomainID {
		sc.DomainID = attrs.DomainID
		sc.LanguageID = attrs.LanguageID
		changed = true
	}
	if customerID != "" && sc.CustomerID != customerID {
		sc.CustomerID = customerID
		changed = true
	}
	if !changed {
		return sc, nil
	}

	sc.UpdatedAt = s.now().UTC()
	if err := s.contexts.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("save context: %w", err)
	}
	return sc, nil
}

// Switch applies data to sc and persists it. When the language changes to
// one served by another domain of the sales channel, the result carries the
// URL of that domain.
func (s *ContextService) Switch(ctx context.Context, sc *domain.SalesChannelContext, data domain.ContextSwitch) (*domain.ContextSwitchResult, error) {
	input := switchInput{
		LanguageID:       data[domain.ParamLanguageID],
		CurrencyID:       data[domain.ParamCurrencyID],
		ShippingMethodID: data[domain.ParamShippingMethodID],
		PaymentMethodID:  data[domain.ParamPaymentMethodID],
		CountryID:        data[domain.ParamCountryID],
		CountryStateID:   data[domain.ParamCountryStateID],
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if input.LanguageID != "" {
		ok, err := s.channels.LanguageAvailable(ctx, sc.SalesChannelID, input.LanguageID)
		if err != nil {
			return nil, fmt.Errorf("check language: %w", err)
		}
		if !ok {
			return nil, validator.NewViolation(domain.ParamLanguageID, "LANGUAGE_NOT_AVAILABLE", "is not available in this sales channel")
		}
	}
	if input.CurrencyID != "" {
		ok, err := s.channels.CurrencyAvailable(ctx, sc.SalesChannelID, input.CurrencyID)
		if err != nil {
			return nil, fmt.Errorf("check currency: %w", err)
		}
		if !ok {
			return nil, validator.NewViolation(domain.ParamCurrencyID, "CURRENCY_NOT_AVAILABLE", "is not available in this sales channel")
		}
	}

	previousLanguage := sc.LanguageID
	next := *sc
	setIfGiven(&next.LanguageID, input.LanguageID)
	setIfGiven(&next.CurrencyID, input.CurrencyID)
	setIfGiven(&next.ShippingMethodID, input.ShippingMethodID)
	setIfGiven(&next.PaymentMethodID, input.PaymentMethodID)
	setIfGiven(&next.CountryID, input.CountryID)
	setIfGiven(&next.CountryStateID, input.CountryStateID)

	result := &domain.ContextSwitchResult{Token: next.Token}
	if next.LanguageID != previousLanguage {
		d, err := s.channels.FindDomain(ctx, sc.SalesChannelID, next.LanguageID)
		switch {
		case err == nil:
			if d.ID != sc.DomainID {
				next.DomainID = d.ID
				result.RedirectURL = d.URL
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("find language domain: %w", err)
		}
	}

	next.UpdatedAt = s.now().UTC()
	if err := s.contexts.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save context: %w", err)
	}
	*sc = next

	if err := s.producer.PublishContextSwitched(ctx, sc, previousLanguage, result.RedirectURL != ""); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish context.switched event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "sales channel context switched",
		slog.String("language_id", sc.LanguageID),
		slog.String("currency_id", sc.CurrencyID),
		slog.Bool("redirect", result.RedirectURL != ""),
	)
	return result, nil
}

func setIfGiven(field *string, value string) {
	if value != "" {
		*field = value
	}
}
