package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Variant is an alternate rendition of an image. The core treats it as opaque.
type Variant struct {
	URL    string
	Width  int
	Height int
}

type ImageDescriptor struct {
	URL      string
	Caption  string
	Variants []Variant
}

// NormalizeCollection drops descriptors without a URL, keeps the first
// occurrence of every URL and truncates the result to maxEntries when
// maxEntries is positive.
func NormalizeCollection(images []ImageDescriptor, maxEntries int) []ImageDescriptor {
	result := make([]ImageDescriptor, 0, len(images))
	seen := make(map[string]struct{}, len(images))
	for _, image := range images {
		url := strings.TrimSpace(image.URL)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		image.URL = url
		result = append(result, image)
		if maxEntries > 0 && len(result) == maxEntries {
			break
		}
	}

	return result
}

// CollectionFingerprint identifies a collection by its ordered URLs.
func CollectionFingerprint(images []ImageDescriptor) string {
	hash := sha1.New()
	for _, image := range images {
		hash.Write([]byte(image.URL))
		hash.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hash.Sum(nil))
}
