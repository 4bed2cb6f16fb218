package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signage/backend/internal/dto"
	"signage/backend/internal/service"
	pkgerrors "signage/backend/pkg/errors"
	"signage/backend/pkg/response"
)

// LocationHandler 地点模块 HTTP 处理器
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler 创建 LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// ListLocations 获取地点列表
// GET /api/v1/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	locations, err := h.locationSvc.List(c.Request.Context(), caller)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": locations})
}

// GetLocation 获取地点详情
// GET /api/v1/locations/:id?contacts=true
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.LocationDetailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Get(c.Request.Context(), caller, id, req.Contacts)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, location)
}

// ListLocationScreens 获取地点已安装的屏幕
// GET /api/v1/locations/:id/screens
func (h *LocationHandler) ListLocationScreens(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	screens, err := h.locationSvc.ListScreens(c.Request.Context(), caller, id)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": screens})
}

// CreateLocation 创建地点
// POST /api/v1/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.Created(c, location)
}

// UpdateLocation 更新地点
// PUT /api/v1/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, location)
}

// UpdateLocationTags 更新地点标签
// PUT /api/v1/locations/:id/tags
func (h *LocationHandler) UpdateLocationTags(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.locationSvc.UpdateTags(c.Request.Context(), caller, id, req.Texts()); err != nil {
		h.handleLocationError(c, err)
		return
	}

	response.OK(c, true)
}

// handleLocationError 统一处理地点模块业务错误
func (h *LocationHandler) handleLocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLocationNotFound):
		response.NotFound(c, 16001, "地点不存在")
	case errors.Is(err, service.ErrScreensAttached):
		response.Conflict(c, 16002, service.ErrScreensAttached.Error())
	case errors.Is(err, service.ErrCompanyNotPermitted):
		response.Forbidden(c, 16003, "无权为该公司操作地点")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 16004, pkgerrors.ErrOptimisticLock.Error())
	case errors.Is(err, service.ErrContractPeriodInvalid):
		response.BadRequest(c, 16005, "合同开始日期不能晚于结束日期")
	case errors.Is(err, service.ErrLocationSaveFailed):
		response.Error(c, http.StatusInternalServerError, 16006, "保存地点失败")
	case errors.Is(err, service.ErrLocationUpdateFailed):
		response.ErrorWithData(c, http.StatusInternalServerError, 16007, "更新地点失败", false)
	default:
		response.InternalError(c)
	}
}
