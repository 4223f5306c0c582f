// Package scanner 提供字体目录的扫描与调和服务
// 负责将受监控根目录下的字体文件同步到目录库：
// - 全量扫描：遍历所有状态正常的分类并逐文件调和
// - 单文件调和：扩展名过滤、大小/修改时间快速跳过、哈希、解析、删旧插新
// - 删除调和：文件从磁盘消失时级联清除其字型记录
// 全量扫描与监听事件触发的单文件调和可并发执行
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/weiwangfds/fontbase/config"
	"github.com/weiwangfds/fontbase/internal/database"
	"github.com/weiwangfds/fontbase/internal/fontparse"
	"github.com/weiwangfds/fontbase/internal/identity"
	"github.com/weiwangfds/fontbase/internal/logger"
	"gorm.io/gorm"
)

// ScannerService 扫描服务接口
// 目录库的唯一写入路径，全量扫描与监听事件均经由此处落库
type ScannerService interface {
	// ScanAll 对所有状态正常的分类执行全量扫描
	// 同一时刻至多一次全量扫描；已有扫描进行中时本次调用为空操作
	ScanAll()

	// ScanCategory 扫描单个分类的根目录
	// 根目录不存在时将分类标记为missing并保留既有记录
	// 参数:
	//   categoryID - 分类ID
	//   rootPath - 分类根目录绝对路径
	ScanCategory(categoryID, rootPath string)

	// ProcessFile 调和单个文件与目录库的状态
	// 全量扫描和监听add/change事件共用的原子调和单元
	// 参数:
	//   fullPath - 文件绝对路径
	//   categoryID - 所属分类ID
	//   rootPath - 分类根目录，用于计算相对路径
	// 返回:
	//   error - 调和失败时返回错误（调用方记录日志，不中断扫描）
	ProcessFile(fullPath, categoryID, rootPath string) error

	// RemovePath 删除指定路径的字体文件记录及其全部字型
	// 路径未被索引时为空操作
	RemovePath(fullPath string) error

	// IsScanning 全量扫描是否进行中
	IsScanning() bool
}

// scannerService 扫描服务实现
type scannerService struct {
	db         *gorm.DB
	parser     fontparse.Parser
	extensions map[string]bool // 支持的字体容器扩展名（小写，不含点）
	workers    int             // 单个分类内的并发处理数
	scanning   atomic.Bool     // 全量扫描进行中标志
	pathLocks  sync.Map        // fullPath -> *sync.Mutex，单文件调和互斥
}

// NewScannerService 创建扫描服务实例
// 参数:
//   db - 数据库连接
//   parser - 字体容器解析器
//   cfg - 扫描器配置
func NewScannerService(db *gorm.DB, parser fontparse.Parser, cfg config.ScannerConfig) ScannerService {
	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &scannerService{
		db:         db,
		parser:     parser,
		extensions: extensions,
		workers:    workers,
	}
}

// ScanAll 对所有状态正常的分类执行全量扫描
func (s *scannerService) ScanAll() {
	if !s.scanning.CompareAndSwap(false, true) {
		logger.Info("Full scan already in progress, skipping")
		return
	}
	defer s.scanning.Store(false)

	logger.Info("Starting full scan")

	var categories []database.Category
	if err := s.db.Where("status = ?", database.CategoryStatusOK).Find(&categories).Error; err != nil {
		logger.Errorf("Failed to load categories for full scan: %v", err)
		return
	}

	for _, cat := range categories {
		s.ScanCategory(cat.CategoryID, cat.Path)
	}

	logger.Info("Full scan complete")
}

// IsScanning 全量扫描是否进行中
func (s *scannerService) IsScanning() bool {
	return s.scanning.Load()
}

// ScanCategory 扫描单个分类的根目录
func (s *scannerService) ScanCategory(categoryID, rootPath string) {
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		// 根目录不可用：标记分类，既有记录保持可查询
		// 路径不存在记为missing，其余访问失败记为error
		status := database.CategoryStatusError
		msg := ""
		switch {
		case os.IsNotExist(err):
			status = database.CategoryStatusMissing
			msg = "Path not found"
		case err != nil:
			msg = err.Error()
		default:
			msg = "Path is not a directory"
		}
		logger.Warnf("Category root unavailable: %s (%s)", rootPath, msg)
		s.setCategoryStatus(categoryID, status, msg)
		return
	}

	s.setCategoryStatus(categoryID, database.CategoryStatusOK, "")

	files := s.collectFiles(rootPath)
	logger.Infof("Scanning category %s: %d files under %s", categoryID, len(files), rootPath)

	// 分类内有界并发处理，单文件内部自行保证原子性
	p := pool.New().WithMaxGoroutines(s.workers)
	for _, file := range files {
		file := file
		p.Go(func() {
			if err := s.ProcessFile(file, categoryID, rootPath); err != nil {
				logger.Errorf("Failed to process file %s: %v", file, err)
			}
		})
	}
	p.Wait()
}

// collectFiles 递归枚举根目录下的所有普通文件
// 单个子目录的遍历错误记录日志后跳过，不影响整体扫描；隐藏目录和文件忽略
func (s *scannerService) collectFiles(rootPath string) []string {
	var files []string

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Error scanning directory %s: %v", path, err)
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != rootPath {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		logger.Warnf("Error walking root %s: %v", rootPath, err)
	}

	return files
}

// ProcessFile 调和单个文件与目录库的状态
func (s *scannerService) ProcessFile(fullPath, categoryID, rootPath string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fullPath)), ".")
	if !s.extensions[ext] {
		return nil
	}

	// 同一路径的调和串行化，避免两个写入方交错删旧插新
	mu := s.lockForPath(fullPath)
	mu.Lock()
	defer mu.Unlock()

	info, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	mtimeMs := info.ModTime().UnixMilli()

	var existing *database.FontFile
	var found database.FontFile
	if err := s.db.Where("full_path = ?", fullPath).First(&found).Error; err == nil {
		existing = &found
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up existing record: %w", err)
	}

	// 快速路径：大小和修改时间均未变化时跳过哈希与解析
	// 这是大目录树重复扫描的主要开销优化
	if existing != nil && existing.SizeBytes == info.Size() && existing.MtimeMs == mtimeMs {
		return nil
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	hash, size := identity.Hash(data)

	faces, err := s.parser.Parse(data, fullPath)
	if err != nil {
		// 解析失败是可恢复的逐文件错误：记录并跳过，不写入任何记录
		logger.Warnf("Failed to parse font %s: %v", fullPath, err)
		return nil
	}

	relPath, err := filepath.Rel(rootPath, fullPath)
	if err != nil {
		relPath = fullPath
	}
	filename := filepath.Base(fullPath)

	fontFile := &database.FontFile{
		FileID:     uuid.New().String(),
		CategoryID: categoryID,
		FullPath:   fullPath,
		RelPath:    relPath,
		Filename:   filename,
		Ext:        ext,
		SizeBytes:  size,
		MtimeMs:    mtimeMs,
		FileHash:   hash,
		URLKey:     identity.URLKey(hash, filename),
	}

	faceRecords := make([]database.FontFace, 0, len(faces))
	for _, face := range faces {
		faceRecords = append(faceRecords, database.FontFace{
			FaceID:         uuid.New().String(),
			FontFileID:     fontFile.FileID,
			Family:         face.Family,
			Subfamily:      face.Subfamily,
			PostscriptName: face.PostscriptName,
			Weight:         face.Weight,
			Italic:         face.Italic,
			Stretch:        face.Stretch,
			Version:        face.Version,
			FullName:       face.FullName,
		})
	}

	// 删旧插新作为一个事务提交，查询方不会观察到半更新状态
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if existing != nil {
			if err := tx.Where("font_file_id = ?", existing.FileID).Delete(&database.FontFace{}).Error; err != nil {
				return fmt.Errorf("failed to delete stale faces: %w", err)
			}
			if err := tx.Delete(existing).Error; err != nil {
				return fmt.Errorf("failed to delete stale file record: %w", err)
			}
		}

		// 重复组：与其他文件共享内容哈希时以哈希为组键
		var dupCount int64
		if err := tx.Model(&database.FontFile{}).Where("file_hash = ?", hash).Count(&dupCount).Error; err != nil {
			return fmt.Errorf("failed to check duplicates: %w", err)
		}
		if dupCount > 0 {
			fontFile.DuplicateGroupKey = hash
			if err := tx.Model(&database.FontFile{}).Where("file_hash = ?", hash).
				Update("duplicate_group_key", hash).Error; err != nil {
				return fmt.Errorf("failed to mark duplicate group: %w", err)
			}
		}

		if err := tx.Create(fontFile).Error; err != nil {
			return fmt.Errorf("failed to create file record: %w", err)
		}
		if len(faceRecords) > 0 {
			if err := tx.Create(&faceRecords).Error; err != nil {
				return fmt.Errorf("failed to create face records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if existing != nil {
		logger.Infof("Reindexed font file %s (%d faces)", fullPath, len(faceRecords))
	} else {
		logger.Infof("Indexed font file %s (%d faces)", fullPath, len(faceRecords))
	}
	return nil
}

// RemovePath 删除指定路径的字体文件记录及其全部字型
func (s *scannerService) RemovePath(fullPath string) error {
	mu := s.lockForPath(fullPath)
	mu.Lock()
	defer mu.Unlock()

	var file database.FontFile
	if err := s.db.Where("full_path = ?", fullPath).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up file record: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("font_file_id = ?", file.FileID).Delete(&database.FontFace{}).Error; err != nil {
			return fmt.Errorf("failed to delete faces: %w", err)
		}
		if err := tx.Delete(&file).Error; err != nil {
			return fmt.Errorf("failed to delete file record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Infof("Removed font file %s from catalog", fullPath)
	return nil
}

// setCategoryStatus 更新分类状态和最近错误信息
func (s *scannerService) setCategoryStatus(categoryID, status, lastError string) {
	updates := map[string]interface{}{
		"status":     status,
		"last_error": lastError,
	}
	if err := s.db.Model(&database.Category{}).Where("category_id = ?", categoryID).
		Updates(updates).Error; err != nil {
		logger.Errorf("Failed to update category %s status: %v", categoryID, err)
	}
}

// lockForPath 获取指定路径的调和互斥锁
func (s *scannerService) lockForPath(fullPath string) *sync.Mutex {
	actual, _ := s.pathLocks.LoadOrStore(fullPath, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
