package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tickerdash/internal/domain"
)

// SymbolMap maps friendly symbols to the codes the source understands,
// e.g. SP500 -> ^GSPC.
type SymbolMap map[string]string

// Resolve returns the source symbol for a ticker, or the ticker itself when
// no alias is configured.
func (m SymbolMap) Resolve(ticker string) string {
	if mapped, ok := m[domain.NormalizeTicker(ticker)]; ok {
		return mapped
	}
	return ticker
}

type symbolMapFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadSymbolMap reads an alias file. A missing path yields an empty map.
func LoadSymbolMap(path string) (SymbolMap, error) {
	if path == "" {
		return SymbolMap{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SymbolMap{}, nil
		}
		return nil, fmt.Errorf("read symbol map: %w", err)
	}

	var file symbolMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse symbol map: %w", err)
	}

	m := make(SymbolMap, len(file.Aliases))
	for alias, symbol := range file.Aliases {
		m[domain.NormalizeTicker(alias)] = symbol
	}
	return m, nil
}
