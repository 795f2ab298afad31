package repository

import (
	"context"

	"app/internal/domain/model"
)

type AdminReviewListFilter struct {
	Page  int
	Limit int
	// "approved" / "pending" / 空なら全部
	Status string
}

type ReviewRepository interface {
	FindByID(ctx context.Context, reviewID int64) (model.Review, error)

	//(user, product)の既存レビュー。再投稿は更新扱いにするため。
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Review, bool, error)

	Create(ctx context.Context, review model.Review) (int64, error)

	// 本文更新。承認は取り消す。
	UpdateContent(ctx context.Context, reviewID int64, rating int, title string, comment string) error

	Delete(ctx context.Context, reviewID int64) error
	SetApproved(ctx context.Context, reviewID int64, approved bool) error
	IncrementHelpful(ctx context.Context, reviewID int64) error

	ListByProduct(ctx context.Context, productID int64, approvedOnly bool, page int, limit int) ([]model.Review, int64, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Review, int64, error)
	ListAdmin(ctx context.Context, f AdminReviewListFilter) ([]model.Review, int64, error)

	// 承認済みレビューからAVG/COUNTを取り直して商品に書き戻す。
	// 差分更新はしない（並行編集下の正しさを優先）。
	RecomputeRating(ctx context.Context, productID int64) error
}
