package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// レビューの投稿・編集・承認。
// 書き換えのたびに商品の平均評価を承認済みレビューから取り直す。
type ReviewUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewReviewUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *ReviewUsecase {
	return &ReviewUsecase{tx: tx, auditRepo: auditRepo}
}

type SubmitReviewInput struct {
	ProductID int64
	OrderID   *int64
	Rating    int
	Title     string
	Comment   string
}

type UpdateReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

type ReviewOutput struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	ProductID          int64     `json:"product_id"`
	OrderID            *int64    `json:"order_id"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	IsApproved         bool      `json:"is_approved"`
	HelpfulCount       int64     `json:"helpful_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// 投稿。同じ(user, product)の既存レビューがあれば上書きして再承認待ちに戻す。
// order_id付きで、その注文が支払い済みかつ対象商品を含むなら「購入済み」フラグ。
func (u *ReviewUsecase) Submit(ctx context.Context, userID int64, in SubmitReviewInput) (ReviewOutput, error) {
	if userID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err := validateReviewContent(in.Rating, in.Comment); err != nil {
		return ReviewOutput{}, err
	}

	var out ReviewOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, in.ProductID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		existing, found, err := r.Reviews().FindByUserAndProduct(ctx, userID, in.ProductID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if found {
			//上書き。承認は取り消し。
			if err := r.Reviews().UpdateContent(ctx, existing.ID, in.Rating, in.Title, in.Comment); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Reviews().RecomputeRating(ctx, in.ProductID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			existing.Rating = in.Rating
			existing.Title = in.Title
			existing.Comment = in.Comment
			existing.IsApproved = false
			out = toReviewOutput(existing)
			return nil
		}

		//購入済みレビューの判定
		verified := false
		if in.OrderID != nil {
			verified, err = r.Orders().ExistsPaidWithProduct(ctx, userID, *in.OrderID, in.ProductID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		now := time.Now()
		review := model.Review{
			UserID:             userID,
			ProductID:          in.ProductID,
			OrderID:            in.OrderID,
			Rating:             in.Rating,
			Title:              in.Title,
			Comment:            in.Comment,
			IsVerifiedPurchase: verified,
			IsApproved:         false,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		id, err := r.Reviews().Create(ctx, review)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//未承認の新規投稿でも取り直しは走らせる（冪等なのでコストだけの話）
		if err := r.Reviews().RecomputeRating(ctx, in.ProductID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		review.ID = id
		out = toReviewOutput(review)
		return nil
	})

	if err != nil {
		return ReviewOutput{}, err
	}
	return out, nil
}

// 本文修正（本人だけ）。承認は取り消し。
func (u *ReviewUsecase) Update(ctx context.Context, userID int64, reviewID int64, in UpdateReviewInput) (ReviewOutput, error) {
	if userID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateReviewContent(in.Rating, in.Comment); err != nil {
		return ReviewOutput{}, err
	}

	var out ReviewOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rv, err := r.Reviews().FindByID(ctx, reviewID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if rv.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		if err := r.Reviews().UpdateContent(ctx, reviewID, in.Rating, in.Title, in.Comment); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Reviews().RecomputeRating(ctx, rv.ProductID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		rv.Rating = in.Rating
		rv.Title = in.Title
		rv.Comment = in.Comment
		rv.IsApproved = false
		out = toReviewOutput(rv)
		return nil
	})

	if err != nil {
		return ReviewOutput{}, err
	}
	return out, nil
}

// 削除は本人か管理者。
func (u *ReviewUsecase) Delete(ctx context.Context, userID int64, isAdmin bool, reviewID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rv, err := r.Reviews().FindByID(ctx, reviewID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if rv.UserID != userID && !isAdmin {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		if err := r.Reviews().Delete(ctx, reviewID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Reviews().RecomputeRating(ctx, rv.ProductID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// 単調増加。誰でも押せる。
func (u *ReviewUsecase) MarkHelpful(ctx context.Context, reviewID int64) error {
	if reviewID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Reviews().IncrementHelpful(ctx, reviewID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// 公開側の一覧。承認済みだけ。
func (u *ReviewUsecase) ListProductReviews(ctx context.Context, productID int64, page int, limit int) ([]ReviewOutput, error) {
	if productID <= 0 {
		return []ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var outs []ReviewOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, _, err := r.Reviews().ListByProduct(ctx, productID, true, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = toReviewOutputs(items)
		return nil
	})
	if err != nil {
		return []ReviewOutput{}, err
	}
	return outs, nil
}

func (u *ReviewUsecase) ListMyReviews(ctx context.Context, userID int64, page int, limit int) ([]ReviewOutput, error) {
	if userID <= 0 {
		return []ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var outs []ReviewOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, _, err := r.Reviews().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = toReviewOutputs(items)
		return nil
	})
	if err != nil {
		return []ReviewOutput{}, err
	}
	return outs, nil
}

func (u *ReviewUsecase) ListAdmin(ctx context.Context, f repo.AdminReviewListFilter) ([]ReviewOutput, error) {
	var outs []ReviewOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, _, err := r.Reviews().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = toReviewOutputs(items)
		return nil
	})
	if err != nil {
		return []ReviewOutput{}, err
	}
	return outs, nil
}

// 承認/非承認（管理者）。フラグ変更のたびに集計を取り直す。
func (u *ReviewUsecase) SetApproved(ctx context.Context, actorAdminUserID int64, reviewID int64, approved bool) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rv, err := r.Reviews().FindByID(ctx, reviewID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Reviews().SetApproved(ctx, reviewID, approved); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Reviews().RecomputeRating(ctx, rv.ProductID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（MODERATE_REVIEW）
		beforeJSON := `{"is_approved":` + strconv.FormatBool(rv.IsApproved) + `}`
		afterJSON := `{"is_approved":` + strconv.FormatBool(approved) + `}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionModerateReview,
			ResourceType: model.AuditResourceReview,
			ResourceID:   reviewID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func validateReviewContent(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		return NewHTTPError(http.StatusBadRequest, "comment is required")
	}
	return nil
}

func toReviewOutput(rv model.Review) ReviewOutput {
	return ReviewOutput{
		ID:                 rv.ID,
		UserID:             rv.UserID,
		ProductID:          rv.ProductID,
		OrderID:            rv.OrderID,
		Rating:             rv.Rating,
		Title:              rv.Title,
		Comment:            rv.Comment,
		IsVerifiedPurchase: rv.IsVerifiedPurchase,
		IsApproved:         rv.IsApproved,
		HelpfulCount:       rv.HelpfulCount,
		CreatedAt:          rv.CreatedAt,
	}
}

func toReviewOutputs(items []model.Review) []ReviewOutput {
	outs := make([]ReviewOutput, 0, len(items))
	for _, rv := range items {
		outs = append(outs, toReviewOutput(rv))
	}
	return outs
}
