// Package watcher 的单元测试
// 测试根目录最长前缀解析、去抖动调度和事件到调和器的分发
// 不依赖真实fsnotify事件的时序
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReconciler 调和器替身，记录收到的调用
type recordingReconciler struct {
	mu        sync.Mutex
	processed []string // ProcessFile收到的路径
	removed   []string // RemovePath收到的路径
	category  string   // 最后一次ProcessFile的分类ID
}

func (r *recordingReconciler) ProcessFile(fullPath, categoryID, rootPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, fullPath)
	r.category = categoryID
	return nil
}

func (r *recordingReconciler) RemovePath(fullPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, fullPath)
	return nil
}

func (r *recordingReconciler) processedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.processed...)
}

func (r *recordingReconciler) removedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

// newTestWatcher 构造一个不启动事件循环的监听服务
func newTestWatcher(rec Reconciler, debounceMs int, roots ...watchedRoot) *fontWatcherService {
	svc := NewFontWatcherService(nil, rec, debounceMs).(*fontWatcherService)
	svc.roots = append(svc.roots, roots...)
	return svc
}

// TestResolveRootLongestPrefix 测试变化路径按最长前缀归属分类
func TestResolveRootLongestPrefix(t *testing.T) {
	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 10,
		watchedRoot{categoryID: "cat-nested", rootPath: "/fonts/nested"},
		watchedRoot{categoryID: "cat-root", rootPath: "/fonts"},
	)

	t.Run("嵌套根优先", func(t *testing.T) {
		categoryID, rootPath, ok := svc.resolveRoot("/fonts/nested/a.ttf")
		require.True(t, ok)
		assert.Equal(t, "cat-nested", categoryID)
		assert.Equal(t, "/fonts/nested", rootPath)
	})

	t.Run("外层根兜底", func(t *testing.T) {
		categoryID, _, ok := svc.resolveRoot("/fonts/other/b.ttf")
		require.True(t, ok)
		assert.Equal(t, "cat-root", categoryID)
	})

	t.Run("无匹配根", func(t *testing.T) {
		_, _, ok := svc.resolveRoot("/elsewhere/c.ttf")
		assert.False(t, ok)
	})

	t.Run("前缀必须是完整路径段", func(t *testing.T) {
		// /fontstore不在/fonts根之下
		_, _, ok := svc.resolveRoot("/fontstore/d.ttf")
		assert.False(t, ok)
	})
}

// TestScheduleReconcileDebounce 测试去抖动窗口内的事件合并
func TestScheduleReconcileDebounce(t *testing.T) {
	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 20, watchedRoot{categoryID: "cat-1", rootPath: "/fonts"})

	// 同一路径的三次快速触发只调和一次
	svc.scheduleReconcile("/fonts/a.ttf")
	svc.scheduleReconcile("/fonts/a.ttf")
	svc.scheduleReconcile("/fonts/a.ttf")

	require.Eventually(t, func() bool {
		return len(rec.processedPaths()) == 1
	}, time.Second, 10*time.Millisecond)

	// 窗口过后不再有额外调用
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.processedPaths(), 1)
	assert.Equal(t, "cat-1", rec.category)
}

// TestScheduleReconcileDistinctPaths 测试不同路径独立去抖
func TestScheduleReconcileDistinctPaths(t *testing.T) {
	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 10, watchedRoot{categoryID: "cat-1", rootPath: "/fonts"})

	svc.scheduleReconcile("/fonts/a.ttf")
	svc.scheduleReconcile("/fonts/b.ttf")

	require.Eventually(t, func() bool {
		return len(rec.processedPaths()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"/fonts/a.ttf", "/fonts/b.ttf"}, rec.processedPaths())
}

// TestCancelPending 测试删除事件取消待执行的调和
func TestCancelPending(t *testing.T) {
	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 30, watchedRoot{categoryID: "cat-1", rootPath: "/fonts"})

	svc.scheduleReconcile("/fonts/a.ttf")
	svc.cancelPending("/fonts/a.ttf")

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.processedPaths())
}

// TestHandleEventRemove 测试删除事件直达调和器
func TestHandleEventRemove(t *testing.T) {
	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 10, watchedRoot{categoryID: "cat-1", rootPath: "/fonts"})

	svc.handleEvent(fsnotify.Event{Name: "/fonts/a.ttf", Op: fsnotify.Remove})
	assert.Equal(t, []string{"/fonts/a.ttf"}, rec.removedPaths())

	svc.handleEvent(fsnotify.Event{Name: "/fonts/b.ttf", Op: fsnotify.Rename})
	assert.Equal(t, []string{"/fonts/a.ttf", "/fonts/b.ttf"}, rec.removedPaths())
}

// TestHandleEventNewDirectoryReconcilesContents 测试整体移动进根目录的目录
// 目录内已有文件不会产生独立事件，Create事件需要主动补齐逐文件调和
func TestHandleEventNewDirectoryReconcilesContents(t *testing.T) {
	root := t.TempDir()
	moved := filepath.Join(root, "incoming")
	require.NoError(t, os.MkdirAll(filepath.Join(moved, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(moved, "Inter-Regular.ttf"), []byte("font"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(moved, "sub", "Inter-Bold.ttf"), []byte("font"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(moved, ".swap.ttf"), []byte("junk"), 0o644))

	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 10, watchedRoot{categoryID: "cat-1", rootPath: root})

	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	svc.watcher = w

	svc.handleEvent(fsnotify.Event{Name: moved, Op: fsnotify.Create})

	require.Eventually(t, func() bool {
		return len(rec.processedPaths()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{
		filepath.Join(moved, "Inter-Regular.ttf"),
		filepath.Join(moved, "sub", "Inter-Bold.ttf"),
	}, rec.processedPaths())
	assert.Equal(t, "cat-1", rec.category)
	assert.Empty(t, rec.removedPaths())
}

// TestHandleEventSkipsDotfiles 测试隐藏文件事件被忽略
func TestHandleEventSkipsDotfiles(t *testing.T) {
	rec := &recordingReconciler{}
	svc := newTestWatcher(rec, 10, watchedRoot{categoryID: "cat-1", rootPath: "/fonts"})

	svc.handleEvent(fsnotify.Event{Name: "/fonts/.swap.ttf", Op: fsnotify.Remove})
	svc.handleEvent(fsnotify.Event{Name: "/fonts/.hidden", Op: fsnotify.Write})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.processedPaths())
	assert.Empty(t, rec.removedPaths())
}
