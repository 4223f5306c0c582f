// Package category 提供分类（受监控根目录）管理相关的业务逻辑服务
// 包含分类的注册、查询、删除等核心功能
// 删除分类时级联清除其下全部字体文件和字型记录
package category

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/weiwangfds/fontbase/internal/database"
	apperrors "github.com/weiwangfds/fontbase/internal/errors"
	"github.com/weiwangfds/fontbase/internal/logger"
	"gorm.io/gorm"
)

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"` // 分类显示名称
	Path string `json:"path" binding:"required"` // 根目录绝对路径
}

// CategoryStats 分类及其统计信息
type CategoryStats struct {
	database.Category
	FileCount int64 `json:"file_count"` // 分类下已索引的文件数
	FaceCount int64 `json:"face_count"` // 分类下已索引的字型数
}

// CategoryService 分类服务接口
// 定义了分类管理的所有业务操作方法
type CategoryService interface {
	// CreateCategory 注册新分类
	// 路径已注册时返回ErrCategoryPathExists错误
	// 参数:
	//   req - 创建分类请求
	// 返回:
	//   *database.Category - 创建的分类对象
	//   error - 错误信息
	CreateCategory(req *CreateCategoryRequest) (*database.Category, error)

	// GetCategoryByID 根据ID获取分类
	// 参数:
	//   categoryID - 分类ID
	// 返回:
	//   *database.Category - 分类对象
	//   error - 错误信息
	GetCategoryByID(categoryID string) (*database.Category, error)

	// ListCategories 获取所有分类及其文件/字型统计
	// 返回:
	//   []CategoryStats - 分类列表，按创建时间升序
	//   error - 错误信息
	ListCategories() ([]CategoryStats, error)

	// DeleteCategory 删除分类并级联清除其下全部文件和字型记录
	// 仅删除目录库记录，磁盘文件不受影响
	// 参数:
	//   categoryID - 分类ID
	// 返回:
	//   error - 错误信息
	DeleteCategory(categoryID string) error
}

// categoryService 分类服务实现
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService 创建分类服务实例
// 参数:
//
//	db - 数据库连接实例
func NewCategoryService(db *gorm.DB) CategoryService {
	return &categoryService{db: db}
}

// CreateCategory 注册新分类
func (s *categoryService) CreateCategory(req *CreateCategoryRequest) (*database.Category, error) {
	name := strings.TrimSpace(req.Name)
	path := filepath.Clean(strings.TrimSpace(req.Path))
	if name == "" || path == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "Name and path are required")
	}
	if !filepath.IsAbs(path) {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "Path must be absolute")
	}

	var count int64
	if err := s.db.Model(&database.Category{}).Where("path = ?", path).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to check existing path", err)
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.ErrCategoryPathExists, "Path is already registered")
	}

	category := &database.Category{
		CategoryID: uuid.New().String(),
		Name:       name,
		Path:       path,
		Status:     database.CategoryStatusOK,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "Failed to create category", err)
	}

	logger.Infof("Created category %s (%s) at %s", category.CategoryID, name, path)
	return category, nil
}

// GetCategoryByID 根据ID获取分类
func (s *categoryService) GetCategoryByID(categoryID string) (*database.Category, error) {
	var category database.Category
	if err := s.db.Where("category_id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCategoryNotFound, "Category not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to look up category", err)
	}
	return &category, nil
}

// ListCategories 获取所有分类及其文件/字型统计
func (s *categoryService) ListCategories() ([]CategoryStats, error) {
	var categories []database.Category
	if err := s.db.Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to list categories", err)
	}

	result := make([]CategoryStats, 0, len(categories))
	for _, category := range categories {
		var fileCount, faceCount int64
		if err := s.db.Model(&database.FontFile{}).
			Where("category_id = ?", category.CategoryID).Count(&fileCount).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to count files", err)
		}
		if err := s.db.Model(&database.FontFace{}).
			Where("font_file_id IN (?)", s.db.Model(&database.FontFile{}).
				Select("file_id").Where("category_id = ?", category.CategoryID)).
			Count(&faceCount).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to count faces", err)
		}
		result = append(result, CategoryStats{
			Category:  category,
			FileCount: fileCount,
			FaceCount: faceCount,
		})
	}
	return result, nil
}

// DeleteCategory 删除分类并级联清除其下全部文件和字型记录
func (s *categoryService) DeleteCategory(categoryID string) error {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 先删字型再删文件，字型表只能通过文件间接定位到分类
		if err := tx.Where("font_file_id IN (?)", tx.Model(&database.FontFile{}).
			Select("file_id").Where("category_id = ?", categoryID)).
			Delete(&database.FontFace{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", categoryID).Delete(&database.FontFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseTransaction, "Failed to delete category", err)
	}

	logger.Infof("Deleted category %s and its indexed fonts", categoryID)
	return nil
}
