package guard

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type wordsFile struct {
	BannedWords []string `yaml:"banned_words"`
}

// ParseBannedWords reads a YAML document of the form:
//
//	banned_words:
//	  - casino
//	  - free money
func ParseBannedWords(data []byte) ([]string, error) {
	var f wordsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("guard: parse banned words: %w", err)
	}
	return f.BannedWords, nil
}

// LoadBannedWords merges a comma separated list with the words from path. Empty path is allowed.
func LoadBannedWords(csv, path string) ([]string, error) {
	var words []string
	for _, w := range strings.Split(csv, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	if path == "" {
		return words, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("guard: read %s: %w", path, err)
	}
	fromFile, err := ParseBannedWords(data)
	if err != nil {
		return nil, err
	}
	return append(words, fromFile...), nil
}
