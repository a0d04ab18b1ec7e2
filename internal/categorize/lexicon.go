package categorize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// lexiconFile is the YAML shape for user-supplied keyword extensions:
//
//	categories:
//	  groceries:
//	    - corner shop
//	  utilities:
//	    - society maintenance
type lexiconFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// NewFromYAML builds a Categorizer from the default lexicon extended
// with keywords from a YAML file. Categories outside the taxonomy are
// rejected rather than silently widening the closed set.
func NewFromYAML(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("NewFromYAML: reading %q: %w", path, err)
	}

	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("NewFromYAML: parsing %q: %w", path, err)
	}

	for category := range file.Categories {
		if !Known(category) {
			return nil, fmt.Errorf("NewFromYAML: %q: unknown category %q", path, category)
		}
	}

	return build(defaultLexicon, file.Categories), nil
}
