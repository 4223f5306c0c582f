// Package database 定义了字体目录相关的数据库模型
// 包含分类（受监控的根目录）、字体文件、字型三层核心模型
package database

import (
	"time"
)

// 分类状态常量
const (
	CategoryStatusOK      = "ok"      // 路径可用
	CategoryStatusMissing = "missing" // 路径不存在
	CategoryStatusError   = "error"   // 路径不可读或其他错误
)

// Category 分类模型
// 一个分类对应用户注册的一个受监控根目录，目录下的字体文件归属该分类
type Category struct {
	ID         uint      `gorm:"primarykey" json:"-"`                             // 主键ID，自增
	CategoryID string    `gorm:"uniqueIndex;not null;size:36" json:"category_id"` // 分类唯一标识符（UUID格式）
	Name       string    `gorm:"not null;size:255" json:"name"`                   // 分类显示名称
	Path       string    `gorm:"uniqueIndex;not null;size:500" json:"path"`       // 根目录绝对路径，全局唯一
	Status     string    `gorm:"not null;size:20;default:ok" json:"status"`       // 状态: ok | missing | error
	LastError  string    `gorm:"size:500" json:"last_error,omitempty"`            // 最近一次扫描错误信息
	CreatedAt  time.Time `json:"created_at"`                                      // 记录创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                      // 记录最后更新时间
}

// TableName 指定Category模型对应的数据库表名
func (Category) TableName() string {
	return "categories"
}

// FontFile 字体文件模型
// 对应磁盘上的一个物理字体容器文件及其文件系统元数据
type FontFile struct {
	ID                uint      `gorm:"primarykey" json:"-"`                          // 主键ID，自增
	FileID            string    `gorm:"uniqueIndex;not null;size:36" json:"file_id"`  // 文件唯一标识符（UUID格式）
	CategoryID        string    `gorm:"index;not null;size:36" json:"category_id"`    // 所属分类ID
	FullPath          string    `gorm:"uniqueIndex;not null;size:500" json:"full_path"` // 文件绝对路径，全局唯一
	RelPath           string    `gorm:"not null;size:500" json:"rel_path"`            // 相对于分类根目录的路径
	Filename          string    `gorm:"not null;size:255" json:"filename"`            // 文件名
	Ext               string    `gorm:"index;not null;size:10" json:"ext"`            // 小写扩展名（不含点）
	SizeBytes         int64     `gorm:"not null" json:"size_bytes"`                   // 文件大小，单位为字节
	MtimeMs           int64     `gorm:"not null" json:"mtime_ms"`                     // 修改时间，Unix毫秒
	FileHash          string    `gorm:"index;not null;size:64" json:"file_hash"`      // 文件内容的SHA256哈希值，用于变更检测和去重
	URLKey            string    `gorm:"uniqueIndex;not null;size:300" json:"url_key"` // 公开访问键，由哈希前缀和清洗后的文件名派生
	DuplicateGroupKey string    `gorm:"index;size:64" json:"duplicate_group_key,omitempty"` // 重复组键，内容哈希相同的文件共享
	CreatedAt         time.Time `json:"created_at"`                                   // 记录创建时间
	UpdatedAt         time.Time `json:"updated_at"`                                   // 记录最后更新时间
}

// TableName 指定FontFile模型对应的数据库表名
func (FontFile) TableName() string {
	return "font_files"
}

// FontFace 字型模型
// 一个字体文件可包含多个逻辑字型（如ttc集合容器），字型归属文件，随文件级联删除
type FontFace struct {
	ID             uint      `gorm:"primarykey" json:"-"`                         // 主键ID，自增
	FaceID         string    `gorm:"uniqueIndex;not null;size:36" json:"face_id"` // 字型唯一标识符（UUID格式）
	FontFileID     string    `gorm:"index;not null;size:36" json:"font_file_id"`  // 所属字体文件ID
	Family         string    `gorm:"index;not null;size:255" json:"family"`       // 字族名，查询时的分组键
	Subfamily      string    `gorm:"not null;size:255" json:"subfamily"`          // 子族/样式名（如 Regular、Bold Italic）
	PostscriptName string    `gorm:"size:255" json:"postscript_name,omitempty"`   // PostScript名称
	Weight         int       `gorm:"not null;default:400" json:"weight"`          // 数字字重 (100-900)
	Italic         bool      `gorm:"not null;default:false" json:"italic"`        // 是否斜体
	Stretch        string    `gorm:"size:50" json:"stretch,omitempty"`            // 宽度/伸缩类别
	Version        string    `gorm:"size:100" json:"version,omitempty"`           // 版本字符串
	FullName       string    `gorm:"size:255" json:"full_name,omitempty"`         // 完整名称
	CreatedAt      time.Time `json:"created_at"`                                  // 记录创建时间
}

// TableName 指定FontFace模型对应的数据库表名
func (FontFace) TableName() string {
	return "font_faces"
}
