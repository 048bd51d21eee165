package billingfailed

import (
	"context"

	"github.com/com4-wkflws/shopify/node"
	"github.com/com4-wkflws/shopify/webhook"
	"github.com/rs/zerolog"
)

const Target = webhook.TargetSubscriptionBillingAttemptFailed

// New returns the trigger. The dispatcher already validated and renamed the
// payload, so the data is passed on unchanged.
func New(logger zerolog.Logger) node.Func {
	return func(ctx context.Context, data, execContext map[string]any) (map[string]any, error) {
		var attempt webhook.SubscriptionBillingAttempt
		if err := node.Decode(data, &attempt); err != nil {
			logger.Warn().Err(err).Msg("billing attempt does not match the expected shape")
			return data, nil
		}

		event := logger.Info().
			Int64("order_id", attempt.OrderID).
			Int64("subscription_contract_id", attempt.SubscriptionContractID)
		if attempt.ErrorCode != nil {
			event = event.Str("error_code", *attempt.ErrorCode)
		}
		event.Msg("subscription billing attempt failed")

		return data, nil
	}
}
