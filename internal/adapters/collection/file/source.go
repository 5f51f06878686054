// Package file loads an image collection from a JSON, YAML or TOML file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/bnema/mmwall/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type variantSchema struct {
	URL    string `json:"url" yaml:"url" toml:"url"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
}

type imageSchema struct {
	URL      string          `json:"url" yaml:"url" toml:"url"`
	Caption  string          `json:"caption,omitempty" yaml:"caption,omitempty" toml:"caption,omitempty"`
	Variants []variantSchema `json:"variants,omitempty" yaml:"variants,omitempty" toml:"variants,omitempty"`
}

type collectionSchema struct {
	Version int           `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Images  []imageSchema `json:"images" yaml:"images" toml:"images"`
}

type Source struct {
	path string
}

var _ ports.CollectionSource = (*Source)(nil)

func NewSource(path string) (*Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("collection path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve collection path: %w", err)
	}

	return &Source{path: filepath.Clean(absPath)}, nil
}

func (s *Source) Path() string {
	return s.path
}

// Load reads the file on every call so that edits are picked up by refreshes.
func (s *Source) Load(ctx context.Context) ([]domain.ImageDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, s.path)
		}
		return nil, fmt.Errorf("read collection file: %w", err)
	}

	var images []imageSchema
	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".json":
		images, err = decodeJSON(data)
	case ".yaml", ".yml":
		images, err = decodeYAML(data)
	case ".toml":
		images, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedEncoding, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode collection file: %w", err)
	}

	return toDescriptors(images), nil
}

// decodeJSON accepts a bare array or an object with an images field.
func decodeJSON(data []byte) ([]imageSchema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var images []imageSchema
		if err := json.Unmarshal(trimmed, &images); err != nil {
			return nil, err
		}
		return images, nil
	}

	var file collectionSchema
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, err
	}
	return file.Images, nil
}

func decodeYAML(data []byte) ([]imageSchema, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var images []imageSchema
		if err := node.Content[0].Decode(&images); err != nil {
			return nil, err
		}
		return images, nil
	}

	var file collectionSchema
	if err := node.Content[0].Decode(&file); err != nil {
		return nil, err
	}
	return file.Images, nil
}

func decodeTOML(data []byte) ([]imageSchema, error) {
	var file collectionSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Images, nil
}

func toDescriptors(images []imageSchema) []domain.ImageDescriptor {
	out := make([]domain.ImageDescriptor, 0, len(images))
	for _, image := range images {
		descriptor := domain.ImageDescriptor{URL: image.URL, Caption: image.Caption}
		for _, variant := range image.Variants {
			descriptor.Variants = append(descriptor.Variants, domain.Variant{
				URL:    variant.URL,
				Width:  variant.Width,
				Height: variant.Height,
			})
		}
		out = append(out, descriptor)
	}
	return out
}
