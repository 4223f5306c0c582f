// Package collection 提供集合（手工策展的字体分组）管理相关的业务逻辑服务
// 包含集合的创建、查询、更新、删除以及集合成员的增删查等核心功能
// 成员操作为幂等操作：重复添加和删除不存在的成员均不报错
package collection

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/weiwangfds/fontbase/internal/database"
	apperrors "github.com/weiwangfds/fontbase/internal/errors"
	"github.com/weiwangfds/fontbase/internal/logger"
	"gorm.io/gorm"
)

// CreateCollectionRequest 创建集合请求
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required"` // 集合名称
	Description string `json:"description"`             // 集合描述
	Color       string `json:"color"`                   // 显示颜色
}

// UpdateCollectionRequest 更新集合请求
// nil字段不更新
type UpdateCollectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// CollectionItemRequest 集合成员操作请求
type CollectionItemRequest struct {
	TargetType string `json:"target_type" binding:"required"` // 目标类型: family | face | file
	TargetID   string `json:"target_id" binding:"required"`   // 目标标识
}

// CollectionStats 集合及其成员数量
type CollectionStats struct {
	database.Collection
	ItemCount int64 `json:"item_count"`
}

// CollectionService 集合服务接口
// 定义了集合管理的所有业务操作方法
type CollectionService interface {
	// CreateCollection 创建新集合
	CreateCollection(req *CreateCollectionRequest) (*database.Collection, error)

	// GetCollectionByID 根据ID获取集合
	GetCollectionByID(collectionID string) (*database.Collection, error)

	// ListCollections 获取所有集合及其成员数量，按创建时间降序
	ListCollections() ([]CollectionStats, error)

	// UpdateCollection 更新集合信息
	UpdateCollection(collectionID string, req *UpdateCollectionRequest) (*database.Collection, error)

	// DeleteCollection 删除集合及其全部成员记录
	DeleteCollection(collectionID string) error

	// AddItem 向集合添加成员，重复添加为空操作
	AddItem(collectionID string, req *CollectionItemRequest) error

	// RemoveItem 从集合移除成员，成员不存在为空操作
	RemoveItem(collectionID string, req *CollectionItemRequest) error

	// GetItems 分页获取集合成员，按加入时间降序
	GetItems(collectionID string, offset, limit int) ([]database.CollectionItem, int64, error)

	// GetTargetSet 返回集合内指定目标类型的目标ID集合
	GetTargetSet(collectionID, targetType string) (map[string]bool, error)

	// GetCollectionsContaining 返回包含指定目标的集合ID列表
	GetCollectionsContaining(targetType, targetID string) ([]string, error)
}

// collectionService 集合服务实现
type collectionService struct {
	db *gorm.DB
}

// NewCollectionService 创建集合服务实例
// 参数:
//
//	db - 数据库连接实例
func NewCollectionService(db *gorm.DB) CollectionService {
	return &collectionService{db: db}
}

// CreateCollection 创建新集合
func (s *collectionService) CreateCollection(req *CreateCollectionRequest) (*database.Collection, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParams, "Collection name is required")
	}

	collection := &database.Collection{
		CollectionID: uuid.New().String(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Color:        strings.TrimSpace(req.Color),
	}
	if err := s.db.Create(collection).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, "Failed to create collection", err)
	}

	logger.Infof("Created collection %s (%s)", collection.CollectionID, name)
	return collection, nil
}

// GetCollectionByID 根据ID获取集合
func (s *collectionService) GetCollectionByID(collectionID string) (*database.Collection, error) {
	var collection database.Collection
	if err := s.db.Where("collection_id = ?", collectionID).First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrRecordNotFound, "Collection not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to look up collection", err)
	}
	return &collection, nil
}

// ListCollections 获取所有集合及其成员数量
func (s *collectionService) ListCollections() ([]CollectionStats, error) {
	var collections []database.Collection
	if err := s.db.Order("created_at DESC").Find(&collections).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to list collections", err)
	}

	result := make([]CollectionStats, 0, len(collections))
	for _, collection := range collections {
		var count int64
		if err := s.db.Model(&database.CollectionItem{}).
			Where("collection_id = ?", collection.CollectionID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to count collection items", err)
		}
		result = append(result, CollectionStats{Collection: collection, ItemCount: count})
	}
	return result, nil
}

// UpdateCollection 更新集合信息
func (s *collectionService) UpdateCollection(collectionID string, req *UpdateCollectionRequest) (*database.Collection, error) {
	collection, err := s.GetCollectionByID(collectionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.ErrInvalidParams, "Collection name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		updates["color"] = strings.TrimSpace(*req.Color)
	}
	if len(updates) == 0 {
		return collection, nil
	}

	if err := s.db.Model(collection).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to update collection", err)
	}
	return s.GetCollectionByID(collectionID)
}

// DeleteCollection 删除集合及其全部成员记录
func (s *collectionService) DeleteCollection(collectionID string) error {
	collection, err := s.GetCollectionByID(collectionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", collectionID).
			Delete(&database.CollectionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(collection).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseTransaction, "Failed to delete collection", err)
	}

	logger.Infof("Deleted collection %s", collectionID)
	return nil
}

// AddItem 向集合添加成员，重复添加为空操作
func (s *collectionService) AddItem(collectionID string, req *CollectionItemRequest) error {
	if _, err := s.GetCollectionByID(collectionID); err != nil {
		return err
	}
	targetType := strings.TrimSpace(req.TargetType)
	targetID := strings.TrimSpace(req.TargetID)
	if !validTargetType(targetType) || targetID == "" {
		return apperrors.New(apperrors.ErrInvalidParams, "Invalid collection target")
	}

	var count int64
	if err := s.db.Model(&database.CollectionItem{}).
		Where("collection_id = ? AND target_type = ? AND target_id = ?", collectionID, targetType, targetID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to check collection item", err)
	}
	if count > 0 {
		return nil
	}

	item := &database.CollectionItem{
		ItemID:       uuid.New().String(),
		CollectionID: collectionID,
		TargetType:   targetType,
		TargetID:     targetID,
	}
	if err := s.db.Create(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseInsert, "Failed to add collection item", err)
	}
	return nil
}

// RemoveItem 从集合移除成员，成员不存在为空操作
func (s *collectionService) RemoveItem(collectionID string, req *CollectionItemRequest) error {
	if _, err := s.GetCollectionByID(collectionID); err != nil {
		return err
	}

	if err := s.db.Where("collection_id = ? AND target_type = ? AND target_id = ?",
		collectionID, strings.TrimSpace(req.TargetType), strings.TrimSpace(req.TargetID)).
		Delete(&database.CollectionItem{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseDelete, "Failed to remove collection item", err)
	}
	return nil
}

// GetItems 分页获取集合成员，按加入时间降序
func (s *collectionService) GetItems(collectionID string, offset, limit int) ([]database.CollectionItem, int64, error) {
	if _, err := s.GetCollectionByID(collectionID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&database.CollectionItem{}).
		Where("collection_id = ?", collectionID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to count collection items", err)
	}

	var items []database.CollectionItem
	if err := s.db.Where("collection_id = ?", collectionID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to list collection items", err)
	}
	return items, total, nil
}

// GetTargetSet 返回集合内指定目标类型的目标ID集合
func (s *collectionService) GetTargetSet(collectionID, targetType string) (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&database.CollectionItem{}).
		Where("collection_id = ? AND target_type = ?", collectionID, targetType).
		Pluck("target_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to load collection set", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// GetCollectionsContaining 返回包含指定目标的集合ID列表
func (s *collectionService) GetCollectionsContaining(targetType, targetID string) ([]string, error) {
	var ids []string
	if err := s.db.Model(&database.CollectionItem{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Pluck("collection_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to look up collections", err)
	}
	return ids, nil
}

// validTargetType 目标类型是否合法
func validTargetType(targetType string) bool {
	switch targetType {
	case database.TargetTypeFamily, database.TargetTypeFace, database.TargetTypeFile:
		return true
	}
	return false
}
