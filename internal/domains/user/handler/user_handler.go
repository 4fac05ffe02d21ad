package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/domains/user/service"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/request"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Me - GET /api/v1/users/me
func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved successfully", user)
}

// AdminList - GET /api/v1/admin/users
func (h *Handler) AdminList(c *gin.Context) {
	q := request.NewQuery(c)
	filter := model.ListUsersFilter{
		Role:      shared.Role(q.String("role")),
		IsActive:  q.Bool("isActive"),
		Search:    q.String("search"),
		SortBy:    q.String("sortBy"),
		SortOrder: q.String("sortOrder"),
		Page:      query.ParsePage(c.Request.URL.Query()),
	}
	if err := q.Err(); err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.AdminList(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Users retrieved successfully", resp)
}

// BulkUpdate - PATCH /api/v1/admin/users
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req model.BulkUpdateUsersRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	resp, err := h.service.BulkUpdate(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Users updated successfully", resp)
}
