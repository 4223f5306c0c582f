// Package handler 提供字体目录相关的HTTP处理器
// 本文件包含分类（受监控根目录）的注册、查询、删除等API接口
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/fontbase/internal/errors"
	"github.com/weiwangfds/fontbase/internal/response"
	categoryservice "github.com/weiwangfds/fontbase/internal/service/category"
	"github.com/weiwangfds/fontbase/internal/service/watcher"
)

// Scanner 扫描触发接口，定义处理器需要的扫描操作方法
type Scanner interface {
	// ScanCategory 扫描单个分类的根目录
	ScanCategory(categoryID, rootPath string)
}

// CategoryHandler 分类处理器
// 处理所有分类相关的HTTP请求，分类变更时联动扫描器和监听器
type CategoryHandler struct {
	categoryService categoryservice.CategoryService
	scanner         Scanner
	watcher         watcher.FontWatcherService
}

// NewCategoryHandler 创建分类处理器实例
// 参数:
//   categoryService - 分类服务接口
//   scanner - 扫描服务
//   fontWatcher - 监听服务
// 返回:
//   *CategoryHandler - 分类处理器实例
func NewCategoryHandler(categoryService categoryservice.CategoryService, scanner Scanner, fontWatcher watcher.FontWatcherService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		scanner:         scanner,
		watcher:         fontWatcher,
	}
}

// ListCategories 获取分类列表
// @Summary 获取所有分类
// @Description 获取所有已注册的分类及其文件/字型统计信息
// @Tags 分类管理
// @Produce json
// @Success 200 {object} response.Response "获取成功"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 注册分类
// @Summary 注册新分类
// @Description 注册一个受监控的根目录，注册后立即触发该目录的初始扫描并纳入文件监听
// @Tags 分类管理
// @Accept json
// @Produce json
// @Param category body category.CreateCategoryRequest true "创建分类请求"
// @Success 200 {object} response.Response "注册成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryservice.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// 新分类立即扫描并纳入监听，扫描在后台进行不阻塞响应
	go h.scanner.ScanCategory(category.CategoryID, category.Path)
	if err := h.watcher.AddRoot(category.CategoryID, category.Path); err != nil {
		response.SuccessWithMessage(c, "分类已注册，但目录监听启动失败: "+err.Error(), category)
		return
	}

	response.SuccessWithMessage(c, "分类注册成功", category)
}

// GetCategory 获取分类详情
// @Summary 获取分类详情
// @Description 根据分类ID获取分类的详细信息
// @Tags 分类管理
// @Produce json
// @Param id path string true "分类ID"
// @Success 200 {object} response.Response "获取成功"
// @Failure 404 {object} response.Response "分类不存在"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID := c.Param("id")
	if categoryID == "" {
		response.BadRequest(c, "分类ID不能为空")
		return
	}

	category, err := h.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
// @Summary 删除分类
// @Description 删除分类并级联清除其下全部索引记录，磁盘文件不受影响
// @Tags 分类管理
// @Produce json
// @Param id path string true "分类ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 404 {object} response.Response "分类不存在"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID := c.Param("id")
	if categoryID == "" {
		response.BadRequest(c, "分类ID不能为空")
		return
	}

	if err := h.categoryService.DeleteCategory(categoryID); err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.watcher.RemoveRoot(categoryID); err != nil {
		response.SuccessWithMessage(c, "分类已删除，但停止监听失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c, "分类删除成功", nil)
}

// RescanCategory 重新扫描分类
// @Summary 重新扫描分类
// @Description 对指定分类触发一次后台全量扫描
// @Tags 分类管理
// @Produce json
// @Param id path string true "分类ID"
// @Success 200 {object} response.Response "扫描已触发"
// @Failure 404 {object} response.Response "分类不存在"
// @Router /api/v1/categories/{id}/rescan [post]
func (h *CategoryHandler) RescanCategory(c *gin.Context) {
	categoryID := c.Param("id")
	category, err := h.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	go h.scanner.ScanCategory(category.CategoryID, category.Path)
	response.SuccessWithMessage(c, "扫描已触发", gin.H{"category_id": categoryID})
}

// handleServiceError 将服务层错误转换为统一的HTTP响应
func handleServiceError(c *gin.Context, err error) {
	if appErr, ok := errors.GetAppError(err); ok {
		switch appErr.Code {
		case errors.ErrCategoryNotFound, errors.ErrFileNotIndexed, errors.ErrRecordNotFound, errors.ErrNotFound:
			response.NotFound(c, appErr.Message)
		case errors.ErrInvalidParams, errors.ErrCategoryPathExists:
			response.BadRequest(c, appErr.Message)
		default:
			response.Error(c, int(appErr.Code), appErr.Message)
		}
		return
	}
	response.InternalServerError(c, err.Error())
}
