package app

import (
	"fmt"
	"strconv"
	"strings"

	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RawTradeForm carries the untyped field values submitted through the modal.
type RawTradeForm struct {
	Ticker     string
	Leverage   string
	EntryPrice string
	StopLoss   string
	TakeProfit string
}

// TradeForm is the parsed and validated shape of a create/edit submission.
type TradeForm struct {
	Ticker     string           `validate:"required"`
	Leverage   float64          `validate:"required,gt=0"`
	EntryPrice float64          `validate:"required,gt=0"`
	StopLoss   float64
	TakeProfit float64
	Exchange   domain.Exchange  `validate:"required"`
	Direction  domain.Direction `validate:"required"`
}

// ParseTradeForm converts the raw modal fields into a TradeForm. Tickers are
// uppercased. Any non-numeric field, a non-positive leverage or entry price,
// or an unknown exchange/direction fails with ErrValidation and no state is
// touched.
func ParseTradeForm(raw RawTradeForm, exchange domain.Exchange, direction domain.Direction) (*TradeForm, error) {
	form := &TradeForm{
		Ticker:    strings.ToUpper(strings.TrimSpace(raw.Ticker)),
		Exchange:  exchange,
		Direction: direction,
	}

	var err error
	if form.Leverage, err = parseField("leverage", raw.Leverage); err != nil {
		return nil, err
	}
	if form.EntryPrice, err = parseField("entry price", raw.EntryPrice); err != nil {
		return nil, err
	}
	if form.StopLoss, err = parseField("stop loss", raw.StopLoss); err != nil {
		return nil, err
	}
	if form.TakeProfit, err = parseField("take profit", raw.TakeProfit); err != nil {
		return nil, err
	}

	if !exchange.IsValid() {
		return nil, fmt.Errorf("unknown exchange %q: %w", exchange, ports.ErrValidation)
	}
	if !direction.IsValid() {
		return nil, fmt.Errorf("unknown direction %q: %w", direction, ports.ErrValidation)
	}
	if err := validate.Struct(form); err != nil {
		return nil, fmt.Errorf("trade form rejected: %w: %w", ports.ErrValidation, err)
	}
	return form, nil
}

func parseField(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number: %w", name, value, ports.ErrValidation)
	}
	return v, nil
}
