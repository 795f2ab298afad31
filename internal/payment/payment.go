package payment

import (
	"context"

	"app/internal/domain/model"
)

type CaptureStatus string

const (
	//即時決済が通った
	StatusCaptured CaptureStatus = "captured"

	//即時決済なし（代引きなど）。支払いはpendingのまま別途確定。
	StatusDeferred CaptureStatus = "deferred"

	//ゲートウェイが拒否した（再試行しても通らない）
	StatusDeclined CaptureStatus = "declined"
)

type CaptureRequest struct {
	//冪等キー。同じ注文で2回呼んでも二重課金しない。
	OrderNumber string

	Amount   int64
	Currency string
	Method   model.PaymentMethod
	Token    string

	//ゲートウェイの明細に出す説明
	Description string
}

type CaptureResult struct {
	Status        CaptureStatus
	TransactionID string

	//Declinedの理由
	Reason string
}

// 外部決済の抽象。注文自体は触らない。
// 通信断・タイムアウト・ブレーカー開はerrorで返る（= gateway error扱い）。
type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
}

// 支払い方法ごとの振り分け。
// カード以外は何もせずDeferredを返す（注文はpayment_status=pendingのまま）。
type Service struct {
	card Gateway
}

func NewService(card Gateway) *Service {
	return &Service{card: card}
}

func (s *Service) Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error) {
	switch req.Method {
	case model.PaymentMethodStripe:
		return s.card.Capture(ctx, req)
	default:
		return CaptureResult{Status: StatusDeferred}, nil
	}
}

// 即時決済が必要な方法か
func RequiresCapture(m model.PaymentMethod) bool {
	return m == model.PaymentMethodStripe
}
