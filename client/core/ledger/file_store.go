package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	walleterrors "github.com/weisyn/wallet/client/core/errors"
	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// DefaultFileName JSON账本默认文件名
const DefaultFileName = "transactions.json"

// FileStore 基于单个JSON文件的账本
//
// 文件内容是格式化缩进的记录数组。每次读-改-写都持有 <path>.lock 上的排他锁，
// 写入先落临时文件再原子替换。无法解析的文件在下次写入时改名为
// <path>.corrupt-<毫秒时间戳> 保留，账本从空序列重新开始。
type FileStore struct {
	path   string
	logger log.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore 创建JSON文件账本
func NewFileStore(path string, logger log.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// DefaultPath 返回程序所在目录下的账本路径
func DefaultPath(name string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), name), nil
}

// Append 追加一条记录
func (s *FileStore) Append(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	return s.withLock(ctx, func() error {
		records, err := s.loadForWrite()
		if err != nil {
			return err
		}
		for _, r := range records {
			if r.ID == rec.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
			}
		}
		return s.store(append(records, rec))
	})
}

// UpdateStatus 更新记录状态，没有实际变化时不写文件
func (s *FileStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidRecord
	}

	return s.withLock(ctx, func() error {
		records, err := s.loadForWrite()
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if records[i].Status.IsTerminal() || records[i].Status == status {
				return nil
			}
			records[i].Status = status
			return s.store(records)
		}
		return nil
	})
}

// ReadAll 读取全部记录，任何读取失败都返回空序列
func (s *FileStore) ReadAll(ctx context.Context) []Record {
	if ctx.Err() != nil {
		return []Record{}
	}
	records, err := s.load()
	if err != nil {
		s.logger.Warnf("读取账本失败，按空账本处理: %v", err)
		return []Record{}
	}
	return records
}

func (s *FileStore) Close() error {
	return nil
}

// load 读取并解析账本文件，文件不存在或为空时返回空序列
func (s *FileStore) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// loadForWrite 在锁内读取账本用于写入，无法解析的文件先隔离再按空账本处理
func (s *FileStore) loadForWrite() ([]Record, error) {
	records, err := s.load()
	if !stderrors.Is(err, ErrCorrupted) {
		return records, err
	}

	quarantine := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().UnixMilli())
	if rerr := os.Rename(s.path, quarantine); rerr != nil {
		return nil, fmt.Errorf("%w (quarantine: %v)", err, rerr)
	}
	s.logger.Errorf("%v", walleterrors.Persistence("ledger.quarantine",
		fmt.Errorf("%w, moved to %s", err, quarantine)))
	return []Record{}, nil
}

// store 写临时文件后重命名替换
func (s *FileStore) store(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".transactions-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// withLock 在排他文件锁内执行读-改-写
func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	lf, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer lf.Close()

	if err := lockFile(lf); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	defer func() {
		if err := unlockFile(lf); err != nil {
			s.logger.Warnf("释放账本锁失败: %v", err)
		}
	}()

	return fn()
}
