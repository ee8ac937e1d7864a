package sector

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sectors.yaml
var embeddedTable []byte

// Entry 标准区域条目
type Entry struct {
	Code  string `yaml:"code" json:"id"`
	Label string `yaml:"label" json:"name"`
}

type tableFile struct {
	Sectors []Entry `yaml:"sectors"`
}

var (
	defaultOnce     sync.Once
	defaultResolver *TableResolver
)

// LoadTable 从 YAML 读取标准表（保持文件中的顺序）
func LoadTable(r io.Reader) ([]Entry, error) {
	var tf tableFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("failed to decode sector table: %w", err)
	}
	for i, e := range tf.Sectors {
		if strings.TrimSpace(e.Code) == "" || strings.TrimSpace(e.Label) == "" {
			return nil, fmt.Errorf("sector table entry %d: code and label are required", i)
		}
	}
	return tf.Sectors, nil
}

// Default 内置标准表解析器（进程内只加载一次，只读）
func Default() *TableResolver {
	defaultOnce.Do(func() {
		entries, err := LoadTable(bytes.NewReader(embeddedTable))
		if err != nil {
			panic(fmt.Sprintf("embedded sector table is invalid: %v", err))
		}
		defaultResolver = NewTableResolver(entries)
	})
	return defaultResolver
}

// Table 内置标准表
func Table() []Entry {
	return Default().Entries()
}
