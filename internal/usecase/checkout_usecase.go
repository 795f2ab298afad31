package usecase

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/payment"
	"app/internal/pricing"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// 注文番号の生成は差し替え可能にする（衝突確率は生成側の責務）
type OrderNumberGenerator interface {
	NewOrderNumber() string
}

// チェックアウト本体。
// 「確保→決済→確定」を2つの短いTxに分ける。決済の外部呼び出し中に
// DBトランザクションを抱えない。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	payments  payment.Gateway
	orderNums OrderNumberGenerator
	tax       pricing.TaxPolicy
	shipping  pricing.ShippingPolicy
	logger    *log.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	payments payment.Gateway,
	orderNums OrderNumberGenerator,
	tax pricing.TaxPolicy,
	shipping pricing.ShippingPolicy,
	logger *log.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		payments:  payments,
		orderNums: orderNums,
		tax:       tax,
		shipping:  shipping,
		logger:    logger,
	}
}

type CheckoutAddressInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type PlaceOrderInput struct {
	PaymentMethod         string
	PaymentToken          string
	Notes                 string
	Shipping              CheckoutAddressInput
	BillingSameAsShipping bool
	Billing               *CheckoutAddressInput
}

// このチェックアウト試行で確保した在庫。失敗時はこの分だけ戻す。
type reservedLine struct {
	ProductID int64
	Quantity  int64
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	switch method {
	case model.PaymentMethodStripe, model.PaymentMethodPaypal, model.PaymentMethodCOD:
		// OK
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	if method == model.PaymentMethodStripe && strings.TrimSpace(in.PaymentToken) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment token required")
	}

	if err := validateCheckoutAddress(in.Shipping); err != nil {
		return OrderOutput{}, err
	}

	//請求先。「配送先と同じ」はこの時点のコピーで、後から連動しない。
	billing := in.Shipping
	if !in.BillingSameAsShipping {
		if in.Billing == nil {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "billing info required")
		}
		if err := validateCheckoutAddress(*in.Billing); err != nil {
			return OrderOutput{}, err
		}
		billing = *in.Billing
	}

	var (
		order    model.Order
		items    []model.OrderItem
		reserved []reservedLine
	)

	//フェーズ1: 在庫確保＋注文スナップショット（短いTx）
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		lines, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		//並行チェックアウト間でロック順が交差しないよう商品ID昇順で処理する
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		//先にまとめて在庫を見る（参考チェック。確定はReserveが行う）
		for _, line := range lines {
			p, ok := byID[line.ProductID]
			if !ok || !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid product in cart")
			}
			if line.Quantity < 1 {
				return NewHTTPError(http.StatusBadRequest, "invalid quantity")
			}
			if p.StockQuantity < line.Quantity {
				return NewHTTPError(http.StatusBadRequest, "insufficient stock for "+p.Name)
			}
		}

		var subtotal int64
		for _, line := range lines {
			p := byID[line.ProductID]

			ok, err := r.Inventory().Reserve(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				//Txロールバックでこの試行の確保分はすべて戻る
				return NewHTTPError(http.StatusBadRequest, "insufficient stock for "+p.Name)
			}
			reserved = append(reserved, reservedLine{ProductID: line.ProductID, Quantity: line.Quantity})

			//現在価格でスナップショット
			items = append(items, model.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSKU:  p.SKU,
				Price:       p.Price,
				Quantity:    line.Quantity,
				Total:       p.Price * line.Quantity,
			})
			subtotal += p.Price * line.Quantity
		}

		tax := u.tax(subtotal)
		shippingCost := u.shipping(subtotal)
		var discount int64 = 0

		now := time.Now()
		order = model.Order{
			OrderNumber:   u.orderNums.NewOrderNumber(),
			UserID:        userID,
			Status:        model.OrderStatusPending,
			PaymentMethod: method,
			PaymentStatus: model.PaymentStatusPending,
			Subtotal:      subtotal,
			Tax:           tax,
			ShippingCost:  shippingCost,
			Discount:      discount,
			Total:         subtotal + tax + shippingCost - discount,
			Notes:         in.Notes,
			Shipping:      toOrderAddress(in.Shipping),
			Billing:       toOrderAddress(billing),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//フェーズ2: 外部決済。Txは持たない（冪等キー=注文番号なので再送は安全）。
	res, err := u.payments.Capture(ctx, payment.CaptureRequest{
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Currency:    "usd",
		Method:      method,
		Token:       in.PaymentToken,
		Description: "Order " + order.OrderNumber,
	})
	if err != nil {
		//タイムアウト・通信断・ブレーカー開はまとめてgateway error扱い
		u.releaseReserved(ctx, order.OrderNumber, reserved)
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment failed: payment gateway unavailable")
	}
	if res.Status == payment.StatusDeclined {
		u.releaseReserved(ctx, order.OrderNumber, reserved)
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment failed: "+res.Reason)
	}
	if res.Status == payment.StatusCaptured {
		order.PaymentStatus = model.PaymentStatusPaid
		order.Status = model.OrderStatusProcessing
		order.TransactionID = res.TransactionID
	}

	//フェーズ3: 注文確定＋カート空（短いTx）
	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}
		if err := r.CartItems().ClearByUserID(ctx, userID); err != nil {
			return err
		}

		order.ID = orderID
		for i := range items {
			items[i].OrderID = orderID
		}
		out = toOrderOutput(order, items)
		return nil
	})
	if err != nil {
		if res.Status == payment.StatusCaptured {
			//課金は成立したのに注文を残せなかった。在庫は戻さず、
			//手動照合に回す。ここだけは絶対に黙って握りつぶさない。
			u.logger.Errorf("CRITICAL reconciliation required: captured payment %s for order %s but commit failed: %v",
				res.TransactionID, order.OrderNumber, err)
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "order could not be finalized")
		}
		u.releaseReserved(ctx, order.OrderNumber, reserved)
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return out, nil
}

// この試行で確保した分を補償で戻す。
// 呼び出し元ctxが切れていても戻せるようにキャンセルは切り離す。
func (u *CheckoutUsecase) releaseReserved(ctx context.Context, orderNumber string, reserved []reservedLine) {
	if len(reserved) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, line := range reserved {
			if err := r.Inventory().Release(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.logger.Errorf("CRITICAL reconciliation required: failed to release reservations for order %s: %v", orderNumber, err)
	}
}

func validateCheckoutAddress(a CheckoutAddressInput) error {
	if strings.TrimSpace(a.Name) == "" ||
		strings.TrimSpace(a.Email) == "" ||
		strings.TrimSpace(a.Address) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.Country) == "" ||
		strings.TrimSpace(a.PostalCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "incomplete address")
	}
	return nil
}

func toOrderAddress(a CheckoutAddressInput) model.OrderAddress {
	return model.OrderAddress{
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Address:    a.Address,
		City:       a.City,
		State:      a.State,
		Country:    a.Country,
		PostalCode: a.PostalCode,
	}
}
