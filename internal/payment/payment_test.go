package payment_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"

	"github.com/stretchr/testify/assert"
)

type cardStub struct {
	calls int
	res   payment.CaptureResult
}

func (c *cardStub) Capture(ctx context.Context, req payment.CaptureRequest) (payment.CaptureResult, error) {
	c.calls++
	return c.res, nil
}

func TestService_DispatchByMethod(t *testing.T) {
	t.Run("stripe goes through card gateway", func(t *testing.T) {
		card := &cardStub{res: payment.CaptureResult{Status: payment.StatusCaptured, TransactionID: "txn_1"}}
		svc := payment.NewService(card)

		res, err := svc.Capture(context.Background(), payment.CaptureRequest{Method: model.PaymentMethodStripe})

		assert.NoError(t, err)
		assert.Equal(t, payment.StatusCaptured, res.Status)
		assert.Equal(t, 1, card.calls)
	})

	t.Run("cod is deferred without calling the gateway", func(t *testing.T) {
		card := &cardStub{}
		svc := payment.NewService(card)

		res, err := svc.Capture(context.Background(), payment.CaptureRequest{Method: model.PaymentMethodCOD})

		assert.NoError(t, err)
		assert.Equal(t, payment.StatusDeferred, res.Status)
		assert.Equal(t, 0, card.calls)
	})

	t.Run("paypal is deferred", func(t *testing.T) {
		card := &cardStub{}
		svc := payment.NewService(card)

		res, err := svc.Capture(context.Background(), payment.CaptureRequest{Method: model.PaymentMethodPaypal})

		assert.NoError(t, err)
		assert.Equal(t, payment.StatusDeferred, res.Status)
		assert.Equal(t, 0, card.calls)
	})
}

func TestRequiresCapture(t *testing.T) {
	assert.True(t, payment.RequiresCapture(model.PaymentMethodStripe))
	assert.False(t, payment.RequiresCapture(model.PaymentMethodPaypal))
	assert.False(t, payment.RequiresCapture(model.PaymentMethodCOD))
}
