package payment

import "context"

type Intent struct {
	ID           string
	ClientSecret string
}

type Event struct {
	Type     string
	IntentID string
}

const EventPaymentSucceeded = "payment_intent.succeeded"

// Gateway abstracts the external payment provider. The provider call is
// not transactional with the database; callers invoke CreateIntent before
// opening their transaction.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency, idempotencyKey string) (*Intent, error)
	VerifyWebhook(payload []byte, sigHeader string) (*Event, error)
}
