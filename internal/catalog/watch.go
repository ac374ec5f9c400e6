package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher 监听外部目录文件，文件稳定后重新加载并回调
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(*Catalog)

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending *time.Timer
}

// NewWatcher 创建目录文件监听器
//
// 监听文件所在目录而不是文件本身，编辑器以 rename 方式保存时仍能收到事件。
func NewWatcher(path string, onReload func(*Catalog)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		debounce: defaultDebounce,
		onReload: onReload,
		watcher:  fw,
	}, nil
}

// Run 阻塞处理文件事件，ctx 结束时关闭监听
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("住宿目录监听出错", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
}

func (w *Watcher) reload() {
	cat, err := LoadFile(w.path)
	if err != nil {
		// 写入未完成或格式错误时保留旧目录
		zap.L().Warn("重新加载住宿目录失败", zap.String("path", w.path), zap.Error(err))
		return
	}
	if w.onReload != nil {
		w.onReload(cat)
	}
}
