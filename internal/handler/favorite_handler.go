// Package handler 提供字体目录相关的HTTP处理器
// 本文件包含收藏的查询和切换API接口
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/fontbase/internal/response"
	favoriteservice "github.com/weiwangfds/fontbase/internal/service/favorite"
)

// FavoriteHandler 收藏处理器
// 处理所有收藏相关的HTTP请求
type FavoriteHandler struct {
	favoriteService favoriteservice.FavoriteService
}

// NewFavoriteHandler 创建收藏处理器实例
// 参数:
//   favoriteService - 收藏服务接口
// 返回:
//   *FavoriteHandler - 收藏处理器实例
func NewFavoriteHandler(favoriteService favoriteservice.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
	}
}

// ListFavorites 获取收藏列表
// @Summary 获取收藏列表
// @Description 获取全部收藏，可按目标类型过滤
// @Tags 收藏管理
// @Produce json
// @Param target_type query string false "目标类型: family | face | file"
// @Success 200 {object} response.Response "获取成功"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.favoriteService.ListFavorites(c.Query("target_type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, favorites)
}

// ToggleFavorite 切换收藏状态
// @Summary 切换收藏状态
// @Description 未收藏时创建，已收藏时删除，返回切换后的状态
// @Tags 收藏管理
// @Accept json
// @Produce json
// @Param favorite body favorite.ToggleFavoriteRequest true "切换收藏请求"
// @Success 200 {object} response.Response "切换成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Router /api/v1/favorites/toggle [post]
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	var req favoriteservice.ToggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.favoriteService.Toggle(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}
