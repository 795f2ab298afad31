package main

import (
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/payment"
	"app/internal/pricing"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// 注文番号。"ORD-"＋UUID由来の英数トークン。衝突は実用上起きない。
type orderNumberGenerator struct{}

func (g *orderNumberGenerator) NewOrderNumber() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + token[:20]
}

func main() {
	//.envは無ければ環境変数だけで動かす
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//決済ゲートウェイ。カード以外は即時決済なし。
	card := payment.NewCardGateway(
		cfg.PaymentGatewayURL,
		cfg.PaymentGatewayKey,
		time.Duration(cfg.PaymentTimeoutMS)*time.Millisecond,
	)
	payments := payment.NewService(card)

	//税・送料ポリシー
	taxPolicy := pricing.FixedRateTax(cfg.TaxRatePercent)
	shippingPolicy := pricing.FlatShippingWithFreeThreshold(cfg.ShippingFee, cfg.FreeShippingThreshold)

	checkoutLogger := log.New("checkout")

	//Usecase生成
	checkoutUC := usecase.NewCheckoutUsecase(txManager, payments, &orderNumberGenerator{}, taxPolicy, shippingPolicy, checkoutLogger)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	cartUC := usecase.NewCartUsecase(txManager)
	reviewUC := usecase.NewReviewUsecase(txManager, auditRepo)

	//Handler生成
	h := server.Handlers{
		Orders:       handler.NewOrderHandler(checkoutUC, orderUC),
		Cart:         handler.NewCartHandler(cartUC),
		Reviews:      handler.NewReviewHandler(reviewUC),
		AdminOrders:  handler.NewAdminOrderHandler(adminOrderUC),
		AdminReviews: handler.NewAdminReviewHandler(reviewUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cfg, h); err != nil {
		panic(err)
	}
}
