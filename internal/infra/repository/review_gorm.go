package repository

import (
	"context"
	"errors"
	"math"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) FindByID(ctx context.Context, reviewID int64) (model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).Where("id = ?", reviewID).First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

func (r *ReviewGormRepository) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Review, bool, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rv).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, false, nil
	}
	if err != nil {
		return model.Review{}, false, err
	}
	return rv, true, nil
}

func (r *ReviewGormRepository) Create(ctx context.Context, review model.Review) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		return 0, err
	}
	return review.ID, nil
}

// 本文を直したら承認は取り消す（再承認待ちに戻す）
func (r *ReviewGormRepository) UpdateContent(ctx context.Context, reviewID int64, rating int, title string, comment string) error {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"rating":      rating,
			"title":       title,
			"comment":     comment,
			"is_approved": false,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ReviewGormRepository) Delete(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", reviewID).
		Delete(&model.Review{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ReviewGormRepository) SetApproved(ctx context.Context, reviewID int64, approved bool) error {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ?", reviewID).
		Update("is_approved", approved)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 単調増加。同時に押されても取りこぼさないようにUPDATEで加算する。
func (r *ReviewGormRepository) IncrementHelpful(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ?", reviewID).
		Update("helpful_count", gorm.Expr("helpful_count + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ReviewGormRepository) ListByProduct(ctx context.Context, productID int64, approvedOnly bool, page int, limit int) ([]model.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("product_id = ?", productID)
	if approvedOnly {
		q = q.Where("is_approved = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Review{}, 0, err
	}

	var items []model.Review
	offset := (page - 1) * limit
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Review{}, 0, err
	}

	return items, total, nil
}

func (r *ReviewGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Review{}, 0, err
	}

	var items []model.Review
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Review{}, 0, err
	}

	return items, total, nil
}

func (r *ReviewGormRepository) ListAdmin(ctx context.Context, f repo.AdminReviewListFilter) ([]model.Review, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Review{})

	switch f.Status {
	case "approved":
		q = q.Where("is_approved = ?", true)
	case "pending":
		q = q.Where("is_approved = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Review{}, 0, err
	}

	var items []model.Review
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Review{}, 0, err
	}

	return items, total, nil
}

// 承認済みレビューからAVG/COUNTを取り直して商品に書き戻す。
// 0件なら0に戻る。差分更新はしない。
func (r *ReviewGormRepository) RecomputeRating(ctx context.Context, productID int64) error {
	var stats struct {
		Avg float64
		Cnt int64
	}

	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	//小数2桁に丸めて保存
	avg := math.Round(stats.Avg*100) / 100

	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": avg,
			"review_count":   stats.Cnt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
