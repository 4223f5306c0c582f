// Package database 定义了收藏夹与合集相关的数据库模型
package database

import (
	"time"
)

// 收藏/合集条目的目标类型常量
const (
	TargetTypeFamily = "family" // 目标为字族（targetId为字族名）
	TargetTypeFace   = "face"   // 目标为单个字型（targetId为FaceID）
	TargetTypeFile   = "file"   // 目标为字体文件（targetId为FileID）
)

// Favorite 收藏模型
// 同一(target_type, target_id)组合至多存在一条记录，重复收藏执行切换语义
type Favorite struct {
	ID         uint      `gorm:"primarykey" json:"-"`                                                // 主键ID，自增
	FavoriteID string    `gorm:"uniqueIndex;not null;size:36" json:"favorite_id"`                    // 收藏唯一标识符（UUID格式）
	TargetType string    `gorm:"uniqueIndex:idx_favorite_target;not null;size:20" json:"target_type"` // 目标类型: family | face | file
	TargetID   string    `gorm:"uniqueIndex:idx_favorite_target;not null;size:255" json:"target_id"`  // 目标标识（字族名或UUID）
	CreatedAt  time.Time `json:"created_at"`                                                         // 记录创建时间
}

// TableName 指定Favorite模型对应的数据库表名
func (Favorite) TableName() string {
	return "favorites"
}

// Collection 合集模型
// 用户自定义的命名分组，通过CollectionItem与字族/字型建立多对多关系
type Collection struct {
	ID           uint      `gorm:"primarykey" json:"-"`                               // 主键ID，自增
	CollectionID string    `gorm:"uniqueIndex;not null;size:36" json:"collection_id"` // 合集唯一标识符（UUID格式）
	Name         string    `gorm:"not null;size:255" json:"name"`                     // 合集名称
	Description  string    `gorm:"size:500" json:"description,omitempty"`             // 合集描述
	Color        string    `gorm:"size:20" json:"color,omitempty"`                    // 显示颜色
	CreatedAt    time.Time `json:"created_at"`                                        // 记录创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                        // 记录最后更新时间
}

// TableName 指定Collection模型对应的数据库表名
func (Collection) TableName() string {
	return "collections"
}

// CollectionItem 合集条目模型
// 同一合集内同一(target_type, target_id)组合至多存在一条记录
type CollectionItem struct {
	ID           uint      `gorm:"primarykey" json:"-"`                                                      // 主键ID，自增
	ItemID       string    `gorm:"uniqueIndex;not null;size:36" json:"item_id"`                              // 条目唯一标识符（UUID格式）
	CollectionID string    `gorm:"uniqueIndex:idx_collection_target;index;not null;size:36" json:"collection_id"` // 所属合集ID
	TargetType   string    `gorm:"uniqueIndex:idx_collection_target;not null;size:20" json:"target_type"`    // 目标类型: family | face | file
	TargetID     string    `gorm:"uniqueIndex:idx_collection_target;not null;size:255" json:"target_id"`     // 目标标识（字族名或UUID）
	CreatedAt    time.Time `json:"created_at"`                                                               // 记录创建时间
}

// TableName 指定CollectionItem模型对应的数据库表名
func (CollectionItem) TableName() string {
	return "collection_items"
}
