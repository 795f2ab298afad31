package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品の読み取りだけを約束。在庫と評価の更新は別のリポジトリが持つ。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//カート内の商品をまとめて引く。見つかった分だけ返す。
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}
