package ledger

import "context"

// unavailableStore 后端打开失败时的占位账本
// 写操作返回打开错误，读操作返回空序列
type unavailableStore struct {
	err error
}

// Unavailable 返回一个始终失败的账本，用于后端无法打开时让转账照常进行
func Unavailable(err error) Store {
	return &unavailableStore{err: err}
}

func (s *unavailableStore) Append(context.Context, Record) error { return s.err }

func (s *unavailableStore) UpdateStatus(context.Context, string, Status) error { return s.err }

func (s *unavailableStore) ReadAll(context.Context) []Record { return []Record{} }

func (s *unavailableStore) Close() error { return nil }
