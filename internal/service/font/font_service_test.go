// Package font 的单元测试
// 测试字族分组搜索的过滤、排序、分页语义和字族详情查询
package font_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/fontbase/internal/database"
	apperrors "github.com/weiwangfds/fontbase/internal/errors"
	collectionservice "github.com/weiwangfds/fontbase/internal/service/collection"
	favoriteservice "github.com/weiwangfds/fontbase/internal/service/favorite"
	fontservice "github.com/weiwangfds/fontbase/internal/service/font"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupFontService 设置字体查询服务及其协作服务
func setupFontService(t *testing.T) (fontservice.FontService, favoriteservice.FavoriteService, collectionservice.CollectionService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	favorites := favoriteservice.NewFavoriteService(db)
	collections := collectionservice.NewCollectionService(db)
	fonts := fontservice.NewFontService(db, favorites, collections)
	return fonts, favorites, collections, db
}

// seedFile 创建一个字体文件记录
func seedFile(t *testing.T, db *gorm.DB, categoryID, filename, ext string) database.FontFile {
	file := database.FontFile{
		FileID:     uuid.New().String(),
		CategoryID: categoryID,
		FullPath:   "/fonts/" + uuid.New().String() + "/" + filename,
		RelPath:    filename,
		Filename:   filename,
		Ext:        ext,
		SizeBytes:  1024,
		MtimeMs:    time.Now().UnixMilli(),
		FileHash:   uuid.New().String(),
		URLKey:     uuid.New().String() + "-" + filename,
	}
	require.NoError(t, db.Create(&file).Error)
	return file
}

// seedFace 在文件下创建一个字型记录
func seedFace(t *testing.T, db *gorm.DB, file database.FontFile, family, subfamily string, weight int, italic bool, createdAt time.Time) database.FontFace {
	face := database.FontFace{
		FaceID:     uuid.New().String(),
		FontFileID: file.FileID,
		Family:     family,
		Subfamily:  subfamily,
		Weight:     weight,
		Italic:     italic,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&face).Error)
	return face
}

// seedLibrary 构造一个小型字体库
// Inter: Regular + Bold + Italic（两个文件），Roboto: Regular，Lato: Light（woff）
func seedLibrary(t *testing.T, db *gorm.DB) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	interFile := seedFile(t, db, "cat-sans", "Inter.ttc", "ttc")
	seedFace(t, db, interFile, "Inter", "Regular", 400, false, base.Add(1*time.Hour))
	seedFace(t, db, interFile, "Inter", "Bold", 700, false, base.Add(1*time.Hour))
	interItalic := seedFile(t, db, "cat-sans", "Inter-Italic.ttf", "ttf")
	seedFace(t, db, interItalic, "Inter", "Italic", 400, true, base.Add(2*time.Hour))

	robotoFile := seedFile(t, db, "cat-sans", "Roboto-Regular.ttf", "ttf")
	seedFace(t, db, robotoFile, "Roboto", "Regular", 400, false, base.Add(5*time.Hour))

	latoFile := seedFile(t, db, "cat-web", "Lato-Light.woff", "woff")
	seedFace(t, db, latoFile, "Lato", "Light", 300, false, base.Add(3*time.Hour))
}

// TestSearchFontsGroupsByFamily 测试按字族分组
func TestSearchFontsGroupsByFamily(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	seedLibrary(t, db)

	result, err := fonts.SearchFonts(fontservice.FontQuery{Sort: fontservice.SortNameAsc})
	require.NoError(t, err)

	require.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "Inter", result.Items[0].Family)
	assert.Equal(t, "Lato", result.Items[1].Family)
	assert.Equal(t, "Roboto", result.Items[2].Family)

	// 跨文件的同字族字型归入同一组
	assert.Len(t, result.Items[0].Faces, 3)
}

// TestSearchFontsMultiFamilyCollection 测试单个集合文件内含多个字族的分组
// ttc中的字型可属于不同字族，每个字族独立成组但共享同一个文件记录
func TestSearchFontsMultiFamilyCollection(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	collectionFile := seedFile(t, db, "cat-cjk", "SourceHan.ttc", "ttc")
	seedFace(t, db, collectionFile, "Source Han Sans SC", "Regular", 400, false, base)
	seedFace(t, db, collectionFile, "Source Han Sans TC", "Regular", 400, false, base)
	seedFace(t, db, collectionFile, "Source Han Sans JP", "Regular", 400, false, base)

	result, err := fonts.SearchFonts(fontservice.FontQuery{Sort: fontservice.SortNameAsc})
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 3)
	for _, group := range result.Items {
		require.Len(t, group.Faces, 1)
		assert.Equal(t, collectionFile.FileID, group.Faces[0].File.FileID)
	}

	// 每个字族的详情都恰好包含自己的一个字型，指向同一份文件
	for _, family := range []string{"Source Han Sans SC", "Source Han Sans TC", "Source Han Sans JP"} {
		detail, err := fonts.GetFontFamily(family)
		require.NoError(t, err)
		require.Len(t, detail.Faces, 1)
		assert.Equal(t, family, detail.Faces[0].Face.Family)
		assert.Equal(t, collectionFile.FileID, detail.Faces[0].File.FileID)
	}
}

// TestSearchFontsDefaultSortNewest 测试默认按组内最新字型时间降序
func TestSearchFontsDefaultSortNewest(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	seedLibrary(t, db)

	result, err := fonts.SearchFonts(fontservice.FontQuery{})
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	// Roboto最新(+5h)，Lato次之(+3h)，Inter最早(+2h)
	assert.Equal(t, "Roboto", result.Items[0].Family)
	assert.Equal(t, "Lato", result.Items[1].Family)
	assert.Equal(t, "Inter", result.Items[2].Family)
}

// TestSearchFontsTextMatch 测试文本匹配作用于字族名、子族名和文件名
func TestSearchFontsTextMatch(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	seedLibrary(t, db)

	t.Run("匹配字族名", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{Q: "inter"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Inter", result.Items[0].Family)
	})

	t.Run("匹配子族名", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{Q: "light"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Lato", result.Items[0].Family)
	})

	t.Run("匹配文件名", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{Q: "roboto-regular"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Roboto", result.Items[0].Family)
	})

	t.Run("无匹配", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{Q: "nonexistent"})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Empty(t, result.Items)
	})
}

// TestSearchFontsFilters 测试各维度过滤条件
func TestSearchFontsFilters(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	seedLibrary(t, db)

	t.Run("按分类过滤", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{CategoryID: "cat-web"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Lato", result.Items[0].Family)
	})

	t.Run("按扩展名过滤", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{Extensions: []string{"woff"}})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Lato", result.Items[0].Family)
	})

	t.Run("按斜体过滤", func(t *testing.T) {
		italic := true
		result, err := fonts.SearchFonts(fontservice.FontQuery{Italic: &italic})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Inter", result.Items[0].Family)
		// 组内只包含满足条件的字型
		require.Len(t, result.Items[0].Faces, 1)
		assert.True(t, result.Items[0].Faces[0].Face.Italic)
	})

	t.Run("按字重区间过滤", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{WeightMin: 600, Sort: fontservice.SortNameAsc})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Inter", result.Items[0].Family)

		result, err = fonts.SearchFonts(fontservice.FontQuery{WeightMax: 300})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Lato", result.Items[0].Family)
	})
}

// TestSearchFontsFavorites 测试收藏过滤
func TestSearchFontsFavorites(t *testing.T) {
	fonts, favorites, _, db := setupFontService(t)
	seedLibrary(t, db)

	_, err := favorites.Toggle(&favoriteservice.ToggleFavoriteRequest{
		TargetType: database.TargetTypeFamily,
		TargetID:   "Roboto",
	})
	require.NoError(t, err)

	result, err := fonts.SearchFonts(fontservice.FontQuery{Favorites: true})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Roboto", result.Items[0].Family)
}

// TestSearchFontsCollection 测试集合成员过滤
func TestSearchFontsCollection(t *testing.T) {
	fonts, _, collections, db := setupFontService(t)
	seedLibrary(t, db)

	created, err := collections.CreateCollection(&collectionservice.CreateCollectionRequest{Name: "Web Safe"})
	require.NoError(t, err)
	require.NoError(t, collections.AddItem(created.CollectionID, &collectionservice.CollectionItemRequest{
		TargetType: database.TargetTypeFamily,
		TargetID:   "Lato",
	}))
	require.NoError(t, collections.AddItem(created.CollectionID, &collectionservice.CollectionItemRequest{
		TargetType: database.TargetTypeFamily,
		TargetID:   "Inter",
	}))

	result, err := fonts.SearchFonts(fontservice.FontQuery{
		CollectionID: created.CollectionID,
		Sort:         fontservice.SortNameAsc,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Inter", result.Items[0].Family)
	assert.Equal(t, "Lato", result.Items[1].Family)
}

// TestSearchFontsPagination 测试分页与分页前总数
func TestSearchFontsPagination(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	seedLibrary(t, db)

	result, err := fonts.SearchFonts(fontservice.FontQuery{
		Sort:   fontservice.SortNameAsc,
		Limit:  2,
		Offset: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Inter", result.Items[0].Family)

	result, err = fonts.SearchFonts(fontservice.FontQuery{
		Sort:   fontservice.SortNameAsc,
		Limit:  2,
		Offset: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Roboto", result.Items[0].Family)

	t.Run("越界offset返回空页", func(t *testing.T) {
		result, err := fonts.SearchFonts(fontservice.FontQuery{Offset: 100})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		assert.Empty(t, result.Items)
	})
}

// TestGetFontFamily 测试字族详情查询
func TestGetFontFamily(t *testing.T) {
	fonts, favorites, collections, db := setupFontService(t)
	seedLibrary(t, db)

	t.Run("字族存在", func(t *testing.T) {
		detail, err := fonts.GetFontFamily("Inter")
		require.NoError(t, err)
		assert.Equal(t, "Inter", detail.Family)
		assert.Len(t, detail.Faces, 3)
		assert.False(t, detail.Favorite)
		assert.Empty(t, detail.Collections)
	})

	t.Run("含收藏状态和所属集合", func(t *testing.T) {
		_, err := favorites.Toggle(&favoriteservice.ToggleFavoriteRequest{
			TargetType: database.TargetTypeFamily,
			TargetID:   "Inter",
		})
		require.NoError(t, err)

		created, err := collections.CreateCollection(&collectionservice.CreateCollectionRequest{Name: "UI Fonts"})
		require.NoError(t, err)
		require.NoError(t, collections.AddItem(created.CollectionID, &collectionservice.CollectionItemRequest{
			TargetType: database.TargetTypeFamily,
			TargetID:   "Inter",
		}))

		detail, err := fonts.GetFontFamily("Inter")
		require.NoError(t, err)
		assert.True(t, detail.Favorite)
		assert.Equal(t, []string{created.CollectionID}, detail.Collections)
	})

	t.Run("字族不存在", func(t *testing.T) {
		_, err := fonts.GetFontFamily("Nope Sans")
		require.Error(t, err)

		appErr, ok := apperrors.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrFileNotIndexed, appErr.Code)
	})
}

// TestGetFileByURLKey 测试URL键定位文件
func TestGetFileByURLKey(t *testing.T) {
	fonts, _, _, db := setupFontService(t)
	file := seedFile(t, db, "cat-1", "a.ttf", "ttf")

	t.Run("键存在", func(t *testing.T) {
		found, err := fonts.GetFileByURLKey(file.URLKey)
		require.NoError(t, err)
		assert.Equal(t, file.FileID, found.FileID)
	})

	t.Run("键不存在", func(t *testing.T) {
		_, err := fonts.GetFileByURLKey("no-such-key")
		require.Error(t, err)

		appErr, ok := apperrors.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrFileNotIndexed, appErr.Code)
	})
}
