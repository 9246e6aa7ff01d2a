// Package configs 内置的网络预设
package configs

import (
	_ "embed"
	"encoding/json"
	"math/big"
	"sort"
)

// NetworkPreset 网络预设
type NetworkPreset struct {
	ChainID uint64 `json:"chain_id"`
	RPCURL  string `json:"rpc_url"`
}

// 嵌入网络预设（在configs目录内直接引用）
//
//go:embed networks.json
var networksJSON []byte

var presets = mustParse(networksJSON)

func mustParse(data []byte) map[string]NetworkPreset {
	var m map[string]NetworkPreset
	if err := json.Unmarshal(data, &m); err != nil {
		panic("configs: invalid networks.json: " + err.Error())
	}
	return m
}

// Network 按名称查找网络预设
func Network(name string) (NetworkPreset, bool) {
	p, ok := presets[name]
	return p, ok
}

// NetworkNames 返回所有预设名称（已排序）
func NetworkNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChainName 按链ID查找预设名称
func ChainName(chainID *big.Int) (string, bool) {
	if chainID == nil || !chainID.IsUint64() {
		return "", false
	}
	for name, p := range presets {
		if p.ChainID == chainID.Uint64() {
			return name, true
		}
	}
	return "", false
}
