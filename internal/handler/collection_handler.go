// Package handler 提供字体目录相关的HTTP处理器
// 本文件包含集合的增删改查和集合成员管理API接口
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/fontbase/internal/response"
	collectionservice "github.com/weiwangfds/fontbase/internal/service/collection"
)

// CollectionHandler 集合处理器
// 处理所有集合相关的HTTP请求
type CollectionHandler struct {
	collectionService collectionservice.CollectionService
}

// NewCollectionHandler 创建集合处理器实例
// 参数:
//   collectionService - 集合服务接口
// 返回:
//   *CollectionHandler - 集合处理器实例
func NewCollectionHandler(collectionService collectionservice.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

// ListCollections 获取集合列表
// @Summary 获取所有集合
// @Description 获取所有集合及其成员数量
// @Tags 集合管理
// @Produce json
// @Success 200 {object} response.Response "获取成功"
// @Router /api/v1/collections [get]
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	collections, err := h.collectionService.ListCollections()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, collections)
}

// CreateCollection 创建集合
// @Summary 创建新集合
// @Description 创建一个手工策展的字体分组
// @Tags 集合管理
// @Accept json
// @Produce json
// @Param collection body collection.CreateCollectionRequest true "创建集合请求"
// @Success 200 {object} response.Response "创建成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Router /api/v1/collections [post]
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	var req collectionservice.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	collection, err := h.collectionService.CreateCollection(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "集合创建成功", collection)
}

// GetCollection 获取集合详情
// @Summary 获取集合详情
// @Description 根据集合ID获取集合信息
// @Tags 集合管理
// @Produce json
// @Param id path string true "集合ID"
// @Success 200 {object} response.Response "获取成功"
// @Failure 404 {object} response.Response "集合不存在"
// @Router /api/v1/collections/{id} [get]
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	collection, err := h.collectionService.GetCollectionByID(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, collection)
}

// UpdateCollection 更新集合
// @Summary 更新集合信息
// @Description 更新集合的名称、描述或颜色
// @Tags 集合管理
// @Accept json
// @Produce json
// @Param id path string true "集合ID"
// @Param collection body collection.UpdateCollectionRequest true "更新集合请求"
// @Success 200 {object} response.Response "更新成功"
// @Failure 404 {object} response.Response "集合不存在"
// @Router /api/v1/collections/{id} [put]
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	var req collectionservice.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	collection, err := h.collectionService.UpdateCollection(c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "集合更新成功", collection)
}

// DeleteCollection 删除集合
// @Summary 删除集合
// @Description 删除集合及其全部成员记录，被引用的字体不受影响
// @Tags 集合管理
// @Produce json
// @Param id path string true "集合ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 404 {object} response.Response "集合不存在"
// @Router /api/v1/collections/{id} [delete]
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	if err := h.collectionService.DeleteCollection(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "集合删除成功", nil)
}

// GetCollectionItems 获取集合成员
// @Summary 获取集合成员
// @Description 分页获取集合内的成员，按加入时间降序
// @Tags 集合管理
// @Produce json
// @Param id path string true "集合ID"
// @Param offset query int false "跳过的成员数"
// @Param limit query int false "返回成员数上限，默认50"
// @Success 200 {object} response.Response "获取成功"
// @Failure 404 {object} response.Response "集合不存在"
// @Router /api/v1/collections/{id}/items [get]
func (h *CollectionHandler) GetCollectionItems(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, total, err := h.collectionService.GetItems(c.Param("id"), offset, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, total, offset, limit)
}

// AddCollectionItem 添加集合成员
// @Summary 添加集合成员
// @Description 向集合添加一个目标，重复添加为空操作
// @Tags 集合管理
// @Accept json
// @Produce json
// @Param id path string true "集合ID"
// @Param item body collection.CollectionItemRequest true "成员操作请求"
// @Success 200 {object} response.Response "添加成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 404 {object} response.Response "集合不存在"
// @Router /api/v1/collections/{id}/items [post]
func (h *CollectionHandler) AddCollectionItem(c *gin.Context) {
	var req collectionservice.CollectionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.collectionService.AddItem(c.Param("id"), &req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "成员添加成功", nil)
}

// RemoveCollectionItem 移除集合成员
// @Summary 移除集合成员
// @Description 从集合移除一个目标，成员不存在为空操作
// @Tags 集合管理
// @Accept json
// @Produce json
// @Param id path string true "集合ID"
// @Param item body collection.CollectionItemRequest true "成员操作请求"
// @Success 200 {object} response.Response "移除成功"
// @Failure 404 {object} response.Response "集合不存在"
// @Router /api/v1/collections/{id}/items [delete]
func (h *CollectionHandler) RemoveCollectionItem(c *gin.Context) {
	var req collectionservice.CollectionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.collectionService.RemoveItem(c.Param("id"), &req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "成员移除成功", nil)
}
