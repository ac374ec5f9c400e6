package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// LoadSeed 加载内置的住宿目录
func LoadSeed() (*Catalog, error) {
	return Parse(seedYAML)
}

// LoadFile 从 YAML 文件加载住宿目录
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 目录
func Parse(data []byte) (*Catalog, error) {
	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return New(src), nil
}
