// Package catalog exposes the fixed choices the post forms offer: the
// technology checkboxes and the level select with its labels.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"sharefolio/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type LevelOption struct {
	Value models.Level `yaml:"value" json:"value"`
	Label string       `yaml:"label" json:"label"`
}

type Catalog struct {
	LevelOptions []LevelOption `yaml:"levels" json:"levels"`
	TechList     []string      `yaml:"technologies" json:"technologies"`
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога: %w", err)
	}

	for _, opt := range c.LevelOptions {
		if !opt.Value.Valid() {
			return nil, fmt.Errorf("неизвестный уровень в каталоге: %q", opt.Value)
		}
	}

	return &c, nil
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Technologies() []string {
	return append([]string(nil), c.TechList...)
}

func (c *Catalog) Levels() []LevelOption {
	return append([]LevelOption(nil), c.LevelOptions...)
}

// LevelLabel returns the display label, or "" for an unknown level.
func (c *Catalog) LevelLabel(level models.Level) string {
	for _, opt := range c.LevelOptions {
		if opt.Value == level {
			return opt.Label
		}
	}
	return ""
}
