// Package seed holds movie graph datasets: the embedded reference data, file
// loading and writing, and a synthetic generator.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanshika/moviegraph/internal/domain"
)

//go:embed reference.yaml
var referenceYAML []byte

// Dataset is everything needed to populate a graph.
type Dataset struct {
	Users   []domain.User  `json:"users" yaml:"users"`
	Movies  []domain.Movie `json:"movies" yaml:"movies"`
	People  []Credit       `json:"people,omitempty" yaml:"people,omitempty"`
	Ratings []RatingRecord `json:"ratings" yaml:"ratings"`
}

// Credit attaches a person to a movie under one or more roles.
type Credit struct {
	domain.Person `yaml:",inline"`
	MovieID       int64    `json:"movieId" yaml:"movieId"`
	Roles         []string `json:"roles" yaml:"roles"`
}

// RatingRecord is one RATED edge.
type RatingRecord struct {
	UserID    string `json:"userId" yaml:"userId"`
	MovieID   int64  `json:"movieId" yaml:"movieId"`
	Rating    int    `json:"rating" yaml:"rating"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// Reference returns the built-in dataset: five users, five movies, a handful of
// credits and ten timestamped ratings.
func Reference() (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(referenceYAML, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode reference dataset: %w", err)
	}
	return ds, nil
}

// Load reads a dataset file. Files ending in .json are decoded as JSON,
// anything else as YAML.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var ds Dataset
	if isJSON(path) {
		err = json.Unmarshal(data, &ds)
	} else {
		err = yaml.Unmarshal(data, &ds)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return ds, nil
}

// Write serialises the dataset to path, creating parent directories. The
// format follows the file extension as in Load.
func Write(ds Dataset, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if isJSON(path) {
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(ds); err != nil {
			return fmt.Errorf("encode json for %s: %w", path, err)
		}
		return nil
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(ds); err != nil {
		return fmt.Errorf("encode yaml for %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("flush yaml for %s: %w", path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
