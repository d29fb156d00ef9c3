// Package runlock 防止两次整理同时写入同一个输出根目录。
package runlock

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName 在输出根目录内创建，运行结束后保留。
const FileName = ".picarrange.lock"

var ErrHeld = errors.New("output root is locked by another picarrange run")

type Lock struct {
	path string
	fl   *flock.Flock
}

// Acquire 对 <root>/.picarrange.lock 加非阻塞的建议锁。锁被其它进程持有时返回包装了
// ErrHeld 的错误。root 必须已存在。
func Acquire(root string) (*Lock, error) {
	p := filepath.Join(root, FileName)
	fl := flock.New(p)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", p, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrHeld, p)
	}
	return &Lock{path: p, fl: fl}, nil
}

func (l *Lock) Path() string { return l.path }

// Release 可重复调用。
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
