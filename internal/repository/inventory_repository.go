package repository

import "context"

// 在庫カウンタの操作。
// Reserveは「チェックと減算」を1つの条件付きUPDATEで行う。
// read-then-writeに書き換えてはいけない（同時注文で売り越す）。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算し、同時にorder_countを加算する。
	// falseは在庫不足（エラーではない）。
	Reserve(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル・補償）。必ず先行するReserve成功と対で呼ぶ。
	Release(ctx context.Context, productID int64, qty int64) error
}
