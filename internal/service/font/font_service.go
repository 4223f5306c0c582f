// Package font 提供字体目录的查询服务
// 本文件实现了字族维度的搜索、详情和文件定位功能
// 主要功能包括：
// - 多条件组合搜索（文本、分类、扩展名、斜体、字重区间、收藏、集合）
// - 按字族分组返回，分页作用于字族粒度
// - 字族详情及其所属集合
// - 通过URL键定位文件用于静态服务
package font

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/weiwangfds/fontbase/internal/database"
	apperrors "github.com/weiwangfds/fontbase/internal/errors"
	"gorm.io/gorm"
)

// FavoriteSet 收藏集合接口，定义查询服务需要的收藏操作方法
// 这里只定义查询服务实际需要的方法，避免循环导入
type FavoriteSet interface {
	// GetTargetSet 返回指定目标类型下所有已收藏的目标ID集合
	GetTargetSet(targetType string) (map[string]bool, error)
}

// CollectionSet 集合成员接口，定义查询服务需要的集合操作方法
type CollectionSet interface {
	// GetTargetSet 返回集合内指定目标类型的目标ID集合
	GetTargetSet(collectionID, targetType string) (map[string]bool, error)
	// GetCollectionsContaining 返回包含指定目标的集合ID列表
	GetCollectionsContaining(targetType, targetID string) ([]string, error)
}

// 分页默认值与上限，作用于字族粒度
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// 搜索结果排序方式
const (
	SortNewest  = "newest"   // 字族内最新索引面的时间降序（默认）
	SortNameAsc = "name_asc" // 字族名不区分大小写升序
)

// FontQuery 字体搜索条件
// 所有条件为与关系，零值字段不参与过滤
type FontQuery struct {
	Q            string   // 文本匹配：字族名、子族名或文件名的子串（不区分大小写）
	CategoryID   string   // 限定分类
	CollectionID string   // 限定集合（按字族成员）
	Favorites    bool     // 仅已收藏字族
	Extensions   []string // 限定容器扩展名
	Italic       *bool    // 斜体过滤，nil表示不过滤
	WeightMin    int      // 字重下界，0表示不限
	WeightMax    int      // 字重上界，0表示不限
	Sort         string   // 排序方式，空值等同SortNewest
	Limit        int      // 返回字族数上限
	Offset       int      // 跳过的字族数
}

// FaceResult 搜索结果中的单个字型及其所在文件
type FaceResult struct {
	Face database.FontFace `json:"face"`
	File database.FontFile `json:"file"`
}

// FamilyGroup 按字族分组的搜索结果项
type FamilyGroup struct {
	Family string       `json:"family"`
	Faces  []FaceResult `json:"faces"`
}

// SearchResult 搜索结果
// Total为分页前满足条件的字族总数
type SearchResult struct {
	Items []FamilyGroup `json:"items"`
	Total int           `json:"total"`
}

// FamilyDetail 字族详情
type FamilyDetail struct {
	Family      string       `json:"family"`
	Faces       []FaceResult `json:"faces"`
	Favorite    bool         `json:"favorite"`
	Collections []string     `json:"collections"`
}

// FontService 字体查询服务接口
type FontService interface {
	// SearchFonts 按条件搜索字体，结果按字族分组
	SearchFonts(query FontQuery) (*SearchResult, error)

	// GetFontFamily 获取单个字族的详情
	// 字族不存在时返回ErrFileNotIndexed错误
	GetFontFamily(family string) (*FamilyDetail, error)

	// GetFileByURLKey 通过URL键定位字体文件记录
	GetFileByURLKey(urlKey string) (*database.FontFile, error)
}

// fontService 字体查询服务实现
type fontService struct {
	db          *gorm.DB
	favorites   FavoriteSet
	collections CollectionSet
}

// NewFontService 创建字体查询服务实例
// 参数:
//
//	db - 数据库连接实例
//	favorites - 收藏集合服务
//	collections - 集合成员服务
func NewFontService(db *gorm.DB, favorites FavoriteSet, collections CollectionSet) FontService {
	return &fontService{
		db:          db,
		favorites:   favorites,
		collections: collections,
	}
}

// SearchFonts 按条件搜索字体，结果按字族分组
// 文件和字型分别按可下推的条件查询，连接、文本匹配、
// 成员过滤和分组在内存中完成，分页前计算字族总数
func (s *fontService) SearchFonts(query FontQuery) (*SearchResult, error) {
	files, err := s.loadFiles(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to load font files", err)
	}

	faces, err := s.loadFaces(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to load font faces", err)
	}

	var favoriteFamilies map[string]bool
	if query.Favorites {
		favoriteFamilies, err = s.favorites.GetTargetSet(database.TargetTypeFamily)
		if err != nil {
			return nil, err
		}
	}

	var collectionFamilies map[string]bool
	if query.CollectionID != "" {
		collectionFamilies, err = s.collections.GetTargetSet(query.CollectionID, database.TargetTypeFamily)
		if err != nil {
			return nil, err
		}
	}

	q := strings.ToLower(strings.TrimSpace(query.Q))

	// 字型按主键升序遍历，字族分组保持首次出现顺序稳定
	groups := make(map[string]*FamilyGroup)
	var order []string
	for _, face := range faces {
		file, ok := files[face.FontFileID]
		if !ok {
			continue
		}

		if q != "" &&
			!strings.Contains(strings.ToLower(face.Family), q) &&
			!strings.Contains(strings.ToLower(face.Subfamily), q) &&
			!strings.Contains(strings.ToLower(file.Filename), q) {
			continue
		}
		if favoriteFamilies != nil && !favoriteFamilies[face.Family] {
			continue
		}
		if collectionFamilies != nil && !collectionFamilies[face.Family] {
			continue
		}

		group, ok := groups[face.Family]
		if !ok {
			group = &FamilyGroup{Family: face.Family}
			groups[face.Family] = group
			order = append(order, face.Family)
		}
		group.Faces = append(group.Faces, FaceResult{Face: face, File: file})
	}

	result := make([]FamilyGroup, 0, len(order))
	for _, family := range order {
		result = append(result, *groups[family])
	}

	sortGroups(result, query.Sort)

	total := len(result)
	result = paginate(result, query.Offset, query.Limit)

	return &SearchResult{Items: result, Total: total}, nil
}

// loadFiles 加载满足文件级条件的字体文件，按FileID索引
func (s *fontService) loadFiles(query FontQuery) (map[string]database.FontFile, error) {
	tx := s.db.Model(&database.FontFile{})
	if query.CategoryID != "" {
		tx = tx.Where("category_id = ?", query.CategoryID)
	}
	if len(query.Extensions) > 0 {
		exts := make([]string, 0, len(query.Extensions))
		for _, ext := range query.Extensions {
			exts = append(exts, strings.ToLower(strings.TrimPrefix(ext, ".")))
		}
		tx = tx.Where("ext IN ?", exts)
	}

	var records []database.FontFile
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}

	files := make(map[string]database.FontFile, len(records))
	for _, record := range records {
		files[record.FileID] = record
	}
	return files, nil
}

// loadFaces 加载满足字型级条件的字型，按主键升序
func (s *fontService) loadFaces(query FontQuery) ([]database.FontFace, error) {
	tx := s.db.Model(&database.FontFace{})
	if query.Italic != nil {
		tx = tx.Where("italic = ?", *query.Italic)
	}
	if query.WeightMin > 0 {
		tx = tx.Where("weight >= ?", query.WeightMin)
	}
	if query.WeightMax > 0 {
		tx = tx.Where("weight <= ?", query.WeightMax)
	}

	var faces []database.FontFace
	if err := tx.Order("id ASC").Find(&faces).Error; err != nil {
		return nil, err
	}
	return faces, nil
}

// sortGroups 对字族分组排序
// name_asc按字族名不区分大小写升序，默认按组内最新字型的索引时间降序
// 稳定排序保留相等项的分组顺序
func sortGroups(groups []FamilyGroup, sortMode string) {
	switch sortMode {
	case SortNameAsc:
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Family) < strings.ToLower(groups[j].Family)
		})
	default:
		sort.SliceStable(groups, func(i, j int) bool {
			return newestFaceAt(groups[i]).After(newestFaceAt(groups[j]))
		})
	}
}

// newestFaceAt 字族组内最新字型的创建时间
func newestFaceAt(group FamilyGroup) time.Time {
	var newest time.Time
	for _, result := range group.Faces {
		if result.Face.CreatedAt.After(newest) {
			newest = result.Face.CreatedAt
		}
	}
	return newest
}

// paginate 对字族分组分页，offset越界时返回空切片
func paginate(groups []FamilyGroup, offset, limit int) []FamilyGroup {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(groups) {
		return []FamilyGroup{}
	}
	end := offset + limit
	if end > len(groups) {
		end = len(groups)
	}
	return groups[offset:end]
}

// GetFontFamily 获取单个字族的详情
func (s *fontService) GetFontFamily(family string) (*FamilyDetail, error) {
	var faces []database.FontFace
	if err := s.db.Where("family = ?", family).Order("id ASC").Find(&faces).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to load font family", err)
	}
	if len(faces) == 0 {
		return nil, apperrors.New(apperrors.ErrFileNotIndexed, "Font family not found")
	}

	fileIDs := make([]string, 0, len(faces))
	for _, face := range faces {
		fileIDs = append(fileIDs, face.FontFileID)
	}
	var records []database.FontFile
	if err := s.db.Where("file_id IN ?", fileIDs).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to load font files", err)
	}
	files := make(map[string]database.FontFile, len(records))
	for _, record := range records {
		files[record.FileID] = record
	}

	results := make([]FaceResult, 0, len(faces))
	for _, face := range faces {
		file, ok := files[face.FontFileID]
		if !ok {
			continue
		}
		results = append(results, FaceResult{Face: face, File: file})
	}

	favoriteFamilies, err := s.favorites.GetTargetSet(database.TargetTypeFamily)
	if err != nil {
		return nil, err
	}
	collections, err := s.collections.GetCollectionsContaining(database.TargetTypeFamily, family)
	if err != nil {
		return nil, err
	}

	return &FamilyDetail{
		Family:      family,
		Faces:       results,
		Favorite:    favoriteFamilies[family],
		Collections: collections,
	}, nil
}

// GetFileByURLKey 通过URL键定位字体文件记录
func (s *fontService) GetFileByURLKey(urlKey string) (*database.FontFile, error) {
	var file database.FontFile
	if err := s.db.Where("url_key = ?", urlKey).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrFileNotIndexed, "Font file not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, "Failed to look up font file", err)
	}
	return &file, nil
}
