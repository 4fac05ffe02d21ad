package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/domains/booking/service"
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

func parseFilter(c *gin.Context) (model.ListTicketsFilter, error) {
	q := request.NewQuery(c)
	f := model.ListTicketsFilter{
		Status:     model.Status(strings.ToUpper(q.String("status"))),
		Type:       model.ServiceType(strings.ToUpper(q.String("type"))),
		Priority:   model.Priority(strings.ToUpper(q.String("priority"))),
		AssignedTo: q.UUID("assignedTo"),
		UserID:     q.UUID("userId"),
		From:       q.Date("from", false),
		To:         q.Date("to", true),
		Search:     q.String("search"),
		SortBy:     q.String("sortBy"),
		SortOrder:  q.String("sortOrder"),
		Page:       query.ParsePage(c.Request.URL.Query()),
	}
	return f, q.Err()
}

// AvailableSlots - GET /api/v1/services/available-slots?date=YYYY-MM-DD&type=REPAIR
func (h *Handler) AvailableSlots(c *gin.Context) {
	resp, err := h.service.AvailableSlots(c.Request.Context(),
		c.Query("date"), strings.ToUpper(strings.TrimSpace(c.Query("type"))))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Available slots retrieved successfully", resp)
}

// Create - POST /api/v1/services
func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	var req model.CreateTicketRequest
	if !request.BindJSON(c, &req) {
		return
	}

	ticket, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Service booked successfully", gin.H{"service": ticket})
}

// ListMine - GET /api/v1/services
func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), actor, filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Services retrieved successfully", resp)
}

// Get - GET /api/v1/services/:id
func (h *Handler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service retrieved successfully", gin.H{"service": ticket})
}

// Update - PATCH /api/v1/services/:id
// The body is decoded into the caller's role DTO, so fields outside it are rejected.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	patch, ok := bindPatch(c, actor.Role)
	if !ok {
		return
	}

	ticket, err := h.service.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service updated successfully", gin.H{"service": ticket})
}

func bindPatch(c *gin.Context, role shared.Role) (model.Patch, bool) {
	switch {
	case role.IsPrivileged():
		var req model.StaffUpdateRequest
		if !request.BindStrictJSON(c, &req) {
			return model.Patch{}, false
		}
		return req.ToPatch(), true
	case role == shared.RoleTechnician:
		var req model.TechnicianUpdateRequest
		if !request.BindStrictJSON(c, &req) {
			return model.Patch{}, false
		}
		return req.ToPatch(), true
	default:
		var req model.CustomerUpdateRequest
		if !request.BindStrictJSON(c, &req) {
			return model.Patch{}, false
		}
		return req.ToPatch(), true
	}
}

// Cancel - DELETE /api/v1/services/:id
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service cancelled successfully", gin.H{"service": ticket})
}

// AdminList - GET /api/v1/admin/services
func (h *Handler) AdminList(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.AdminList(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Services retrieved successfully", resp)
}

// BulkUpdate - PATCH /api/v1/admin/services
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req model.BulkUpdateTicketsRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	resp, err := h.service.BulkUpdate(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Services updated successfully", resp)
}
