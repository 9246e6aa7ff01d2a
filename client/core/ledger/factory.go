package ledger

import (
	"context"
	"fmt"

	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

// 存储后端
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config 账本配置
type Config struct {
	Backend string `json:"backend"` // json | badger | sqlite
	Path    string `json:"path"`    // 为空时使用程序所在目录下的默认位置
}

// defaultNames 各后端在程序目录下的默认文件名
var defaultNames = map[string]string{
	BackendJSON:   DefaultFileName,
	BackendBadger: "transactions.badger",
	BackendSQLite: "transactions.db",
}

// ResolvePath 返回配置对应的存储路径
func (c Config) ResolvePath() (string, error) {
	backend := c.Backend
	if backend == "" {
		backend = BackendJSON
	}
	name, ok := defaultNames[backend]
	if !ok {
		return "", fmt.Errorf("unknown ledger backend %q", c.Backend)
	}
	if c.Path != "" {
		return c.Path, nil
	}
	return DefaultPath(name)
}

// Open 按配置打开账本
func Open(ctx context.Context, cfg Config, logger log.Logger) (Store, error) {
	path, err := cfg.ResolvePath()
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "", BackendJSON:
		return NewFileStore(path, logger), nil
	case BackendBadger:
		return NewBadgerStore(path, logger)
	default:
		return OpenSQLiteStore(ctx, path, logger)
	}
}
