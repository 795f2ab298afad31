package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/reviewsのHTTP
type AdminReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewAdminReviewHandler(uc *usecase.ReviewUsecase) *AdminReviewHandler {
	return &AdminReviewHandler{uc: uc}
}

func (h *AdminReviewHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/reviews")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.list)
	g.PUT("/:id/approve", h.approve)
	g.PUT("/:id/reject", h.reject)
}

func (h *AdminReviewHandler) list(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}

	out, err := h.uc.ListAdmin(c.Request().Context(), repo.AdminReviewListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminReviewHandler) approve(c echo.Context) error {
	return h.moderate(c, true, "review approved")
}

func (h *AdminReviewHandler) reject(c echo.Context) error {
	return h.moderate(c, false, "review rejected")
}

func (h *AdminReviewHandler) moderate(c echo.Context, approved bool, message string) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.SetApproved(c.Request().Context(), adminID, id, approved); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}
