// Package favorite 提供收藏管理相关的业务逻辑服务
// 收藏是对目标（字族、字型或文件）的集合成员关系，同一目标至多收藏一次
package favorite

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/weiwangfds/fontbase/internal/database"
	apperrors "github.com/weiwangfds/fontbase/internal/errors"
	"github.com/weiwangfds/fontbase/internal/logger"
	"gorm.io/gorm"
)

// ToggleFavoriteRequest 切换收藏请求
type ToggleFavoriteRequest struct {
	TargetType string `json:"target_type" binding:"required"` // 目标类型: family | face | file
	TargetID   string `json:"target_id" binding:"required"`   // 目标标识（字族名或ID）
}

// ToggleResult 切换收藏的结果
type ToggleResult struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Favorited  bool   `json:"favorited"` // 切换后的收藏状态
}

// FavoriteService 收藏服务接口
type FavoriteService interface {
	// ListFavorites 获取指定目标类型的全部收藏
	// targetType为空时返回所有类型
	ListFavorites(targetType string) ([]database.Favorite, error)

	// Toggle 切换目标的收藏状态
	// 未收藏时创建，已收藏时删除，返回切换后的状态
	Toggle(req *ToggleFavoriteRequest) (*ToggleResult, error)

	// GetTargetSet 返回指定目标类型下所有已收藏的目标ID集合
	GetTargetSet(targetType string) (map[string]bool, error)
}

// favoriteService 收藏服务实现
type favoriteService struct {
	db *gorm.DB
}

// NewFavoriteService 创建收藏服务实例
func NewFavoriteService(db *gorm.DB) FavoriteService {
	return &favoriteService{db: db}
}

// ListFavorites 获取指定目标类型的全部收藏
func (s *favoriteService) ListFavorites(targetType string) ([]database.Favorite, error) {
	tx := s.db.Order("created_at DESC")
	if targetType != "" {
		tx = tx.Where("target_type = ?", targetType)
	}

	var favorites []database.Favorite
	if err := tx.Find(&favorites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to list favorites", err)
	}
	return favorites, nil
}

// Toggle 切换目标的收藏状态
func (s *favoriteService) Toggle(req *ToggleFavoriteRequest) (*ToggleResult, error) {
	targetType := strings.TrimSpace(req.TargetType)
	targetID := strings.TrimSpace(req.TargetID)
	if !validTargetType(targetType) || targetID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "Invalid favorite target")
	}

	result := &ToggleResult{TargetType: targetType, TargetID: targetID}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing database.Favorite
		err := tx.Where("target_type = ? AND target_id = ?", targetType, targetID).
			First(&existing).Error
		if err == nil {
			result.Favorited = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		result.Favorited = true
		return tx.Create(&database.Favorite{
			FavoriteID: uuid.New().String(),
			TargetType: targetType,
			TargetID:   targetID,
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseTransaction, "Failed to toggle favorite", err)
	}

	logger.Infof("Toggled favorite %s/%s -> %v", targetType, targetID, result.Favorited)
	return result, nil
}

// GetTargetSet 返回指定目标类型下所有已收藏的目标ID集合
func (s *favoriteService) GetTargetSet(targetType string) (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&database.Favorite{}).
		Where("target_type = ?", targetType).
		Pluck("target_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to load favorite set", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// validTargetType 目标类型是否合法
func validTargetType(targetType string) bool {
	switch targetType {
	case database.TargetTypeFamily, database.TargetTypeFace, database.TargetTypeFile:
		return true
	}
	return false
}
