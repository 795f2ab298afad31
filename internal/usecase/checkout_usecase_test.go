package usecase_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	"app/internal/pricing"
	"app/internal/usecase"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type checkoutFixture struct {
	repos *TxReposMock
	gw    *gatewayStub
	uc    *usecase.CheckoutUsecase
}

func newCheckoutFixture(gw *gatewayStub) *checkoutFixture {
	repos := newTxReposMock()
	logger := log.New("test")
	logger.SetOutput(io.Discard)

	uc := usecase.NewCheckoutUsecase(
		&TxManagerMock{Repos: repos},
		gw,
		&orderNumsStub{},
		pricing.FixedRateTax(10),
		pricing.FlatShipping(500),
		logger,
	)
	return &checkoutFixture{repos: repos, gw: gw, uc: uc}
}

func testAddress() usecase.CheckoutAddressInput {
	return usecase.CheckoutAddressInput{
		Name:       "Taro Yamada",
		Email:      "taro@example.com",
		Phone:      "090-0000-0000",
		Address:    "1-2-3 Chiyoda",
		City:       "Tokyo",
		Country:    "JP",
		PostalCode: "100-0001",
	}
}

func TestPlaceOrder_CODSuccess(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusDeferred}}
	f := newCheckoutFixture(gw)
	ctx := context.Background()

	//カート行はわざと商品ID降順で返す（昇順に並べ直されるはず）
	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 11, UserID: 7, ProductID: 2, Quantity: 1},
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 2},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 2, IsActive: true},
		{ID: 2, Name: "Gadget", SKU: "G-001", Price: 2000, StockQuantity: 5, IsActive: true},
	}, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(1), int64(2)).Return(true, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(2), int64(1)).Return(true, nil)

	var created model.Order
	f.repos.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).
		Run(func(args mock.Arguments) { created = args.Get(1).(model.Order) }).
		Return(int64(42), nil)
	f.repos.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	f.repos.cartItems.On("ClearByUserID", mock.Anything, int64(7)).Return(nil)

	out, err := f.uc.PlaceOrder(ctx, 7, usecase.PlaceOrderInput{
		PaymentMethod:         "cod",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, "ORD-TEST00000000000001", out.OrderNumber)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "pending", out.PaymentStatus)
	assert.Equal(t, int64(4000), out.Subtotal)
	assert.Equal(t, int64(400), out.Tax)
	assert.Equal(t, int64(500), out.ShippingCost)
	assert.Equal(t, int64(4900), out.Total)

	//明細は商品ID昇順・現在価格のスナップショット
	if assert.Len(t, out.Items, 2) {
		assert.Equal(t, int64(1), out.Items[0].ProductID)
		assert.Equal(t, "Widget", out.Items[0].ProductName)
		assert.Equal(t, int64(2000), out.Items[0].Total)
		assert.Equal(t, int64(2), out.Items[1].ProductID)
	}

	//「配送先と同じ」は保存時点のコピー
	assert.Equal(t, created.Shipping, created.Billing)
	assert.Equal(t, "Taro Yamada", created.Billing.Name)

	assert.Equal(t, 1, gw.calls)
	f.repos.cartItems.AssertCalled(t, "ClearByUserID", mock.Anything, int64(7))
	f.repos.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_StripeCaptured(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusCaptured, TransactionID: "txn_123"}}
	f := newCheckoutFixture(gw)
	ctx := context.Background()

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 1},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 3, IsActive: true},
	}, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(1), int64(1)).Return(true, nil)
	f.repos.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(43), nil)
	f.repos.orderItems.On("CreateBulk", mock.Anything, int64(43), mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	f.repos.cartItems.On("ClearByUserID", mock.Anything, int64(7)).Return(nil)

	out, err := f.uc.PlaceOrder(ctx, 7, usecase.PlaceOrderInput{
		PaymentMethod:         "stripe",
		PaymentToken:          "tok_visa",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, "processing", out.Status)
	assert.Equal(t, "paid", out.PaymentStatus)
	assert.Equal(t, "txn_123", out.TransactionID)

	//冪等キー=注文番号で金額込みのリクエストが飛んでいる
	assert.Equal(t, "ORD-TEST00000000000001", gw.lastReq.OrderNumber)
	assert.Equal(t, int64(1600), gw.lastReq.Amount)
	assert.Equal(t, model.PaymentMethodStripe, gw.lastReq.Method)
	assert.Equal(t, "tok_visa", gw.lastReq.Token)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusDeferred}}
	f := newCheckoutFixture(gw)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		PaymentMethod:         "cod",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "cart is empty", he.Message)
	assert.Equal(t, 0, gw.calls)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusDeferred}}
	f := newCheckoutFixture(gw)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 5},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 2, IsActive: true},
	}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		PaymentMethod:         "cod",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "insufficient stock for Widget", he.Message)
	assert.Equal(t, 0, gw.calls)
	f.repos.inventory.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	f.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 事前チェックは通るが条件付きUPDATEで負けるケース（並行注文で最後の1個を取られた）
func TestPlaceOrder_ReserveLosesRace(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusDeferred}}
	f := newCheckoutFixture(gw)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 1},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 1, IsActive: true},
	}, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(1), int64(1)).Return(false, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		PaymentMethod:         "cod",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "insufficient stock for Widget", he.Message)
	assert.Equal(t, 0, gw.calls)

	//Txロールバックで戻るので明示的なReleaseはしない
	f.repos.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	f.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_CardDeclined(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusDeclined, Reason: "card declined"}}
	f := newCheckoutFixture(gw)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 2},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 5, IsActive: true},
	}, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(1), int64(2)).Return(true, nil)
	f.repos.inventory.On("Release", mock.Anything, int64(1), int64(2)).Return(nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		PaymentMethod:         "stripe",
		PaymentToken:          "tok_visa",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "payment failed: card declined", he.Message)

	//確保した分は補償で戻し、注文は一切残さない
	f.repos.inventory.AssertCalled(t, "Release", mock.Anything, int64(1), int64(2))
	f.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repos.cartItems.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
}

func TestPlaceOrder_GatewayUnavailable(t *testing.T) {
	gw := &gatewayStub{err: errors.New("connection refused")}
	f := newCheckoutFixture(gw)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 1},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 5, IsActive: true},
	}, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(1), int64(1)).Return(true, nil)
	f.repos.inventory.On("Release", mock.Anything, int64(1), int64(1)).Return(nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		PaymentMethod:         "stripe",
		PaymentToken:          "tok_visa",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "payment failed: payment gateway unavailable", he.Message)
	f.repos.inventory.AssertCalled(t, "Release", mock.Anything, int64(1), int64(1))
}

// 課金成立後に確定Txが落ちたら在庫は戻さない（課金と確保の対を崩さない）
func TestPlaceOrder_CommitFailsAfterCapture(t *testing.T) {
	gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusCaptured, TransactionID: "txn_999"}}
	f := newCheckoutFixture(gw)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{
		{ID: 10, UserID: 7, ProductID: 1, Quantity: 1},
	}, nil)
	f.repos.products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Widget", SKU: "W-001", Price: 1000, StockQuantity: 5, IsActive: true},
	}, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(1), int64(1)).Return(true, nil)
	f.repos.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(0), errors.New("db down"))

	_, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		PaymentMethod:         "stripe",
		PaymentToken:          "tok_visa",
		Shipping:              testAddress(),
		BillingSameAsShipping: true,
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Equal(t, "order could not be finalized", he.Message)
	f.repos.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      usecase.PlaceOrderInput
		message string
	}{
		{
			name:    "unknown payment method",
			in:      usecase.PlaceOrderInput{PaymentMethod: "bitcoin", Shipping: testAddress(), BillingSameAsShipping: true},
			message: "invalid payment_method",
		},
		{
			name:    "stripe without token",
			in:      usecase.PlaceOrderInput{PaymentMethod: "stripe", Shipping: testAddress(), BillingSameAsShipping: true},
			message: "payment token required",
		},
		{
			name: "incomplete shipping address",
			in: usecase.PlaceOrderInput{
				PaymentMethod:         "cod",
				Shipping:              usecase.CheckoutAddressInput{Name: "Taro"},
				BillingSameAsShipping: true,
			},
			message: "incomplete address",
		},
		{
			name:    "billing missing",
			in:      usecase.PlaceOrderInput{PaymentMethod: "cod", Shipping: testAddress(), BillingSameAsShipping: false},
			message: "billing info required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &gatewayStub{res: payment.CaptureResult{Status: payment.StatusDeferred}}
			f := newCheckoutFixture(gw)

			_, err := f.uc.PlaceOrder(context.Background(), 7, tt.in)

			he, ok := usecase.AsHTTPError(err)
			assert.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Status)
			assert.Equal(t, tt.message, he.Message)
			assert.Equal(t, 0, gw.calls)
		})
	}
}
