// Package handler 提供字体目录相关的HTTP处理器
// 本文件包含字体搜索、字族详情、全量扫描触发和静态文件服务等API接口
package handler

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/fontbase/internal/response"
	fontservice "github.com/weiwangfds/fontbase/internal/service/font"
)

// FullScanner 全量扫描接口，定义字体处理器需要的扫描操作方法
type FullScanner interface {
	// ScanAll 对所有状态正常的分类执行全量扫描
	ScanAll()
	// IsScanning 全量扫描是否进行中
	IsScanning() bool
}

// 字体容器扩展名到MIME类型的映射
var fontContentTypes = map[string]string{
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttc":   "font/collection",
}

// FontHandler 字体处理器
// 处理所有字体查询和静态服务相关的HTTP请求
type FontHandler struct {
	fontService fontservice.FontService
	scanner     FullScanner
}

// NewFontHandler 创建字体处理器实例
// 参数:
//   fontService - 字体查询服务接口
//   scanner - 扫描服务
// 返回:
//   *FontHandler - 字体处理器实例
func NewFontHandler(fontService fontservice.FontService, scanner FullScanner) *FontHandler {
	return &FontHandler{
		fontService: fontService,
		scanner:     scanner,
	}
}

// SearchFonts 搜索字体
// @Summary 搜索字体
// @Description 按条件搜索字体，结果按字族分组，分页作用于字族粒度
// @Tags 字体查询
// @Produce json
// @Param q query string false "文本匹配关键词"
// @Param category_id query string false "限定分类ID"
// @Param collection_id query string false "限定集合ID"
// @Param favorites query bool false "仅已收藏字族"
// @Param ext query string false "扩展名过滤，逗号分隔"
// @Param italic query bool false "斜体过滤"
// @Param weight_min query int false "字重下界"
// @Param weight_max query int false "字重上界"
// @Param sort query string false "排序方式: newest | name_asc"
// @Param limit query int false "返回字族数上限，默认50，最大200"
// @Param offset query int false "跳过的字族数"
// @Success 200 {object} response.Response "搜索结果"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/fonts [get]
func (h *FontHandler) SearchFonts(c *gin.Context) {
	query := fontservice.FontQuery{
		Q:            c.Query("q"),
		CategoryID:   c.Query("category_id"),
		CollectionID: c.Query("collection_id"),
		Sort:         c.Query("sort"),
	}

	if raw := c.Query("ext"); raw != "" {
		for _, ext := range strings.Split(raw, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				query.Extensions = append(query.Extensions, ext)
			}
		}
	}
	if raw := c.Query("favorites"); raw != "" {
		query.Favorites = raw == "true" || raw == "1"
	}
	if raw := c.Query("italic"); raw != "" {
		italic := raw == "true" || raw == "1"
		query.Italic = &italic
	}
	query.WeightMin = parseIntQuery(c, "weight_min", 0)
	query.WeightMax = parseIntQuery(c, "weight_max", 0)
	query.Limit = parseIntQuery(c, "limit", fontservice.DefaultLimit)
	query.Offset = parseIntQuery(c, "offset", 0)

	result, err := h.fontService.SearchFonts(query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, result.Items, int64(result.Total), query.Offset, query.Limit)
}

// GetFontFamily 获取字族详情
// @Summary 获取字族详情
// @Description 获取指定字族的全部字型、收藏状态及所属集合
// @Tags 字体查询
// @Produce json
// @Param family path string true "字族名"
// @Success 200 {object} response.Response "字族详情"
// @Failure 404 {object} response.Response "字族不存在"
// @Router /api/v1/fonts/families/{family} [get]
func (h *FontHandler) GetFontFamily(c *gin.Context) {
	family := c.Param("family")
	if family == "" {
		response.BadRequest(c, "字族名不能为空")
		return
	}

	detail, err := h.fontService.GetFontFamily(family)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, detail)
}

// TriggerScan 触发全量扫描
// @Summary 触发全量扫描
// @Description 在后台对所有分类触发一次全量扫描，已有扫描进行中时返回当前状态
// @Tags 字体查询
// @Produce json
// @Success 200 {object} response.Response "扫描状态"
// @Router /api/v1/fonts/scan [post]
func (h *FontHandler) TriggerScan(c *gin.Context) {
	if h.scanner.IsScanning() {
		response.SuccessWithMessage(c, "全量扫描已在进行中", gin.H{"scanning": true})
		return
	}
	go h.scanner.ScanAll()
	response.SuccessWithMessage(c, "全量扫描已触发", gin.H{"scanning": true})
}

// GetScanStatus 获取扫描状态
// @Summary 获取扫描状态
// @Description 查询全量扫描是否进行中
// @Tags 字体查询
// @Produce json
// @Success 200 {object} response.Response "扫描状态"
// @Router /api/v1/fonts/scan [get]
func (h *FontHandler) GetScanStatus(c *gin.Context) {
	response.Success(c, gin.H{"scanning": h.scanner.IsScanning()})
}

// ServeFont 提供字体文件内容
// @Summary 下载字体文件
// @Description 通过URL键提供字体文件的原始内容，用于前端预览加载
// @Tags 字体查询
// @Produce application/octet-stream
// @Param urlKey path string true "文件URL键"
// @Param filename path string true "文件名"
// @Success 200 {file} binary "字体文件内容"
// @Failure 404 {object} response.Response "文件不存在"
// @Router /fonts-static/{urlKey}/{filename} [get]
func (h *FontHandler) ServeFont(c *gin.Context) {
	urlKey := c.Param("urlKey")
	file, err := h.fontService.GetFileByURLKey(urlKey)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// 磁盘文件可能在索引后被移除且调和尚未到达
	if _, err := os.Stat(file.FullPath); err != nil {
		response.NotFound(c, "字体文件已不在磁盘上")
		return
	}

	contentType := fontContentTypes[file.Ext]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	c.File(file.FullPath)
}

// parseIntQuery 解析整数查询参数，非法值回退到默认值
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
