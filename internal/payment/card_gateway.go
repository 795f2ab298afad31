package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// 冪等キーを渡すヘッダ
const idempotencyKeyHeader = "Idempotency-Key"

// カード決済APIのHTTPクライアント。
// タイムアウトは有界、連続失敗時はサーキットブレーカーで遮断する。
type CardGateway struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[CaptureResult]
}

func NewCardGateway(endpoint string, apiKey string, timeout time.Duration) *CardGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[CaptureResult](gobreaker.Settings{
		Name:    "card-gateway",
		Timeout: 30 * time.Second,
	})

	return &CardGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		cb:       cb,
	}
}

type chargeRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Source      string            `json:"source"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

type chargeResponse struct {
	ID    string `json:"id"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *CardGateway) Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error) {
	return g.cb.Execute(func() (CaptureResult, error) {
		return g.capture(ctx, req)
	})
}

func (g *CardGateway) capture(ctx context.Context, req CaptureRequest) (CaptureResult, error) {
	body, err := json.Marshal(chargeRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Source:      req.Token,
		Description: req.Description,
		Metadata:    map[string]string{"order_number": req.OrderNumber},
	})
	if err != nil {
		return CaptureResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/charges", bytes.NewReader(body))
	if err != nil {
		return CaptureResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	//同じ注文で再送しても同じ課金になる
	httpReq.Header.Set(idempotencyKeyHeader, req.OrderNumber)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return CaptureResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CaptureResult{}, err
	}

	var out chargeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return CaptureResult{}, fmt.Errorf("gateway returned invalid body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return CaptureResult{Status: StatusCaptured, TransactionID: out.ID}, nil

	case resp.StatusCode == http.StatusPaymentRequired:
		//カード拒否。再試行では通らないのでerrorにはしない。
		reason := out.Error.Message
		if reason == "" {
			reason = "card declined"
		}
		return CaptureResult{Status: StatusDeclined, Reason: reason}, nil

	default:
		return CaptureResult{}, fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}
}
