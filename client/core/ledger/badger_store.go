package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// 键空间
//
//	rec/<seq:8字节大端>  -> Record JSON
//	idx/<交易ID>         -> rec 键
var (
	recordPrefix = []byte("rec/")
	indexPrefix  = []byte("idx/")
)

// BadgerStore 基于BadgerDB的账本，按递增序号保持写入顺序
type BadgerStore struct {
	db     *badgerdb.DB
	logger log.Logger
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore 打开BadgerDB账本，dir 为空时使用内存模式
func NewBadgerStore(dir string, logger log.Logger) (*BadgerStore, error) {
	var opts badgerdb.Options
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
		opts = badgerdb.DefaultOptions(dir)
		opts.SyncWrites = true
	}

	// 账本数据量很小，压低默认的内存和文件占用
	opts.MemTableSize = 8 << 20
	opts.ValueLogFileSize = 16 << 20
	opts.BlockCacheSize = 8 << 20
	opts.IndexCacheSize = 4 << 20
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

func recordKey(seq uint64) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], seq)
	return key
}

func indexKey(id string) []byte {
	return append(append([]byte{}, indexPrefix...), id...)
}

// lastSeq 返回当前最大序号，空账本返回0
func lastSeq(txn *badgerdb.Txn) uint64 {
	opts := badgerdb.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := append(append([]byte{}, recordPrefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	it.Seek(seek)
	if !it.ValidForPrefix(recordPrefix) {
		return 0
	}
	return binary.BigEndian.Uint64(it.Item().Key()[len(recordPrefix):])
}

// Append 追加一条记录
func (s *BadgerStore) Append(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(indexKey(rec.ID))
		if err == nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		if !stderrors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}

		key := recordKey(lastSeq(txn) + 1)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(indexKey(rec.ID), key)
	})
}

// UpdateStatus 更新记录状态
func (s *BadgerStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		idx, err := txn.Get(indexKey(id))
		if stderrors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		key, err := idx.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var rec Record
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		if rec.Status.IsTerminal() || rec.Status == status {
			return nil
		}

		rec.Status = status
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// ReadAll 按序号顺序读取全部记录
func (s *BadgerStore) ReadAll(ctx context.Context) []Record {
	records := []Record{}
	if ctx.Err() != nil {
		return records
	}

	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		s.logger.Warnf("读取账本失败，按空账本处理: %v", err)
		return []Record{}
	}
	return records
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger 将BadgerDB内部日志转发到钱包日志
type badgerLogger struct {
	logger log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

// Infof BadgerDB的info日志很多，降为debug
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}
