// Package watcher 提供字体目录的文件系统监听服务
// 本文件实现了字体监听服务，用于监控分类根目录的文件变化并增量调和到目录库
// 主要功能包括：
// - 递归监听所有分类根目录（含运行期新建的子目录）
// - 事件去抖动，合并编辑器保存等触发的事件风暴
// - 变化路径按最长前缀解析到所属分类
// - 新增/修改交给调和器重建索引，删除级联清除记录
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/weiwangfds/fontbase/internal/database"
	"github.com/weiwangfds/fontbase/internal/logger"
	"gorm.io/gorm"
)

// Reconciler 调和器接口，定义监听服务需要的扫描操作方法
// 这里只定义监听服务实际需要的方法，避免循环导入
type Reconciler interface {
	// ProcessFile 调和单个文件与目录库的状态
	ProcessFile(fullPath, categoryID, rootPath string) error
	// RemovePath 删除指定路径的字体文件记录
	RemovePath(fullPath string) error
}

// FontWatcherService 字体监听服务接口
// 提供分类根目录的变化监听和增量索引功能
// 支持启动/停止服务以及运行期增删监听根目录
type FontWatcherService interface {
	// Start 启动字体监听服务
	// 参数:
	//   ctx - 上下文，用于控制服务生命周期
	// 返回:
	//   error - 启动失败时返回错误
	// 功能:
	//   - 从数据库加载状态正常的分类并注册监听
	//   - 启动事件处理协程
	Start(ctx context.Context) error

	// Stop 停止字体监听服务
	// 返回:
	//   error - 停止失败时返回错误
	// 功能:
	//   - 优雅关闭事件处理协程
	//   - 取消所有待执行的去抖动任务
	Stop() error

	// AddRoot 注册新的分类根目录监听
	// 参数:
	//   categoryID - 分类ID
	//   rootPath - 分类根目录绝对路径
	AddRoot(categoryID, rootPath string) error

	// RemoveRoot 移除分类根目录监听
	// 参数:
	//   categoryID - 分类ID
	RemoveRoot(categoryID string) error
}

// watchedRoot 被监听的分类根目录
type watchedRoot struct {
	categoryID string
	rootPath   string
}

// fontWatcherService 字体监听服务实现
// 实现FontWatcherService接口，提供完整的目录监听和增量调和功能
type fontWatcherService struct {
	db         *gorm.DB       // 数据库连接
	reconciler Reconciler     // 调和器，变化事件的最终处理方
	debounce   time.Duration  // 事件去抖动窗口
	watcher    *fsnotify.Watcher
	roots      []watchedRoot  // 监听中的根目录，按路径最长前缀匹配
	rootsMu    sync.RWMutex   // 保护roots
	timers     map[string]*time.Timer // 路径级去抖动定时器
	timersMu   sync.Mutex     // 保护timers
	stopChan   chan struct{}  // 停止信号通道
	wg         sync.WaitGroup // 等待组，用于协程同步
	isRunning  bool           // 服务运行状态
	mu         sync.RWMutex   // 读写锁，保护运行状态
}

// NewFontWatcherService 创建字体监听服务实例
// 参数:
//
//	db - 数据库连接实例
//	reconciler - 调和器实例
//	debounceMs - 事件去抖动窗口（毫秒）
//
// 返回:
//
//	FontWatcherService - 字体监听服务接口实例
func NewFontWatcherService(db *gorm.DB, reconciler Reconciler, debounceMs int) FontWatcherService {
	if debounceMs < 1 {
		debounceMs = 300
	}
	logger.Infof("Initializing font watcher, debounce window: %dms", debounceMs)

	return &fontWatcherService{
		db:         db,
		reconciler: reconciler,
		debounce:   time.Duration(debounceMs) * time.Millisecond,
		timers:     make(map[string]*time.Timer),
		stopChan:   make(chan struct{}),
	}
}

// Start 启动字体监听服务
// 加载所有状态正常的分类根目录并启动事件处理协程
func (s *fontWatcherService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("font watcher is already running")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	s.watcher = w
	s.stopChan = make(chan struct{})
	s.isRunning = true

	// 已注册分类的根目录在启动时全部纳入监听
	var categories []database.Category
	if err := s.db.Where("status = ?", database.CategoryStatusOK).Find(&categories).Error; err != nil {
		logger.Errorf("Failed to load categories for watching: %v", err)
	} else {
		for _, cat := range categories {
			if err := s.AddRoot(cat.CategoryID, cat.Path); err != nil {
				logger.Warnf("Failed to watch category root %s: %v", cat.Path, err)
			}
		}
	}

	s.wg.Add(1)
	go s.eventLoop(ctx)

	logger.Info("Font watcher started")
	return nil
}

// Stop 停止字体监听服务
// 关闭事件处理协程并取消待执行的去抖动任务
func (s *fontWatcherService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	close(s.stopChan)
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			logger.Warnf("Error closing fsnotify watcher: %v", err)
		}
	}
	s.wg.Wait()

	s.timersMu.Lock()
	for path, timer := range s.timers {
		timer.Stop()
		delete(s.timers, path)
	}
	s.timersMu.Unlock()

	s.isRunning = false
	logger.Info("Font watcher stopped")
	return nil
}

// AddRoot 注册新的分类根目录监听
// 根目录及其全部子目录递归纳入监听
func (s *fontWatcherService) AddRoot(categoryID, rootPath string) error {
	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("root path unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path is not a directory: %s", rootPath)
	}

	if err := s.watchRecursive(rootPath); err != nil {
		return err
	}

	s.rootsMu.Lock()
	s.roots = append(s.roots, watchedRoot{categoryID: categoryID, rootPath: rootPath})
	// 最长路径优先，嵌套根目录时事件归属更深的分类
	sort.Slice(s.roots, func(i, j int) bool {
		return len(s.roots[i].rootPath) > len(s.roots[j].rootPath)
	})
	s.rootsMu.Unlock()

	logger.Infof("Watching category root: %s", rootPath)
	return nil
}

// RemoveRoot 移除分类根目录监听
func (s *fontWatcherService) RemoveRoot(categoryID string) error {
	s.rootsMu.Lock()
	defer s.rootsMu.Unlock()

	for i, root := range s.roots {
		if root.categoryID != categoryID {
			continue
		}
		s.roots = append(s.roots[:i], s.roots[i+1:]...)
		if s.watcher != nil {
			// 子目录的监听随目录删除由fsnotify自行失效，这里只摘除根
			if err := s.watcher.Remove(root.rootPath); err != nil {
				logger.Warnf("Failed to unwatch root %s: %v", root.rootPath, err)
			}
		}
		logger.Infof("Stopped watching category root: %s", root.rootPath)
		return nil
	}
	return nil
}

// watchRecursive 递归注册目录及其子目录的监听，隐藏目录跳过
func (s *fontWatcherService) watchRecursive(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Error walking %s for watch registration: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != rootPath {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			logger.Warnf("Failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}

// eventLoop 事件处理协程
// 消费fsnotify事件，去抖后分发到调和器
func (s *fontWatcherService) eventLoop(ctx context.Context) {
	defer s.wg.Done()
	logger.Info("Font watcher event loop started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("Watcher error: %v", err)
		}
	}
}

// handleEvent 处理单个文件系统事件
func (s *fontWatcherService) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	// 新建目录立即纳入监听，其内文件的后续事件才能到达
	// 整体移动进来的目录不会为已有文件产生独立事件，主动遍历补齐调和
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := s.watchRecursive(event.Name); err != nil {
				logger.Warnf("Failed to watch new directory %s: %v", event.Name, err)
			}
			s.reconcileTree(event.Name)
			return
		}
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		s.scheduleReconcile(event.Name)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		s.cancelPending(event.Name)
		if err := s.reconciler.RemovePath(event.Name); err != nil {
			logger.Errorf("Failed to remove %s from catalog: %v", event.Name, err)
		}
	}
}

// reconcileTree 为新出现目录下的全部普通文件安排调和
// 隐藏文件和隐藏子目录跳过，单个条目的遍历错误不影响其余文件
func (s *fontWatcherService) reconcileTree(dirPath string) {
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("Error walking new directory %s: %v", path, err)
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dirPath {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		s.scheduleReconcile(path)
		return nil
	})
	if err != nil {
		logger.Warnf("Failed to reconcile new directory %s: %v", dirPath, err)
	}
}

// scheduleReconcile 为路径安排去抖后的调和
// 同一路径在窗口内的后续事件重置定时器，只有最后一次触发实际调和
func (s *fontWatcherService) scheduleReconcile(fullPath string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if timer, ok := s.timers[fullPath]; ok {
		timer.Reset(s.debounce)
		return
	}

	s.timers[fullPath] = time.AfterFunc(s.debounce, func() {
		s.timersMu.Lock()
		delete(s.timers, fullPath)
		s.timersMu.Unlock()

		categoryID, rootPath, ok := s.resolveRoot(fullPath)
		if !ok {
			logger.Warnf("No watched root matches changed path %s", fullPath)
			return
		}
		if err := s.reconciler.ProcessFile(fullPath, categoryID, rootPath); err != nil {
			logger.Errorf("Failed to reconcile %s: %v", fullPath, err)
		}
	})
}

// cancelPending 取消路径上待执行的去抖动任务
func (s *fontWatcherService) cancelPending(fullPath string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if timer, ok := s.timers[fullPath]; ok {
		timer.Stop()
		delete(s.timers, fullPath)
	}
}

// resolveRoot 将变化路径解析到所属分类
// roots按路径长度降序排列，首个前缀匹配即为最长前缀
func (s *fontWatcherService) resolveRoot(fullPath string) (categoryID, rootPath string, ok bool) {
	s.rootsMu.RLock()
	defer s.rootsMu.RUnlock()

	for _, root := range s.roots {
		prefix := root.rootPath
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(fullPath, prefix) {
			return root.categoryID, root.rootPath, true
		}
	}
	return "", "", false
}
