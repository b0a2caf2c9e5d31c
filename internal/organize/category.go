package organize

import (
	"fmt"
	"strings"
)

// Category is the coarse file-type bucket used for top-level sorting.
type Category string

// Category labels. Every extension maps to exactly one of these;
// anything not covered by a ruleset falls to CategoryOther.
const (
	CategoryData      Category = "data"
	CategoryDocuments Category = "documents"
	CategoryImages    Category = "images"
	CategoryVideos    Category = "videos"
	CategoryArchives  Category = "archives"
	CategoryScripts   Category = "scripts"
	CategoryOther     Category = "other"
)

// classifyOrder fixes which category wins when an extension appears in
// more than one set.
var classifyOrder = []Category{
	CategoryData,
	CategoryDocuments,
	CategoryImages,
	CategoryVideos,
	CategoryArchives,
	CategoryScripts,
}

// ParseCategory maps a category name to its Category. Only categories
// that can carry extension sets are accepted; "other" is the implicit
// fallback and cannot be configured.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range classifyOrder {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// Ruleset maps file extensions to categories.
type Ruleset struct {
	sets map[Category]map[string]struct{}
}

// NewRuleset builds a ruleset from per-category extension lists.
// Extensions are normalized to lowercase with a leading dot, so ".PDF"
// and "pdf" configure the same rule.
func NewRuleset(sets map[Category][]string) *Ruleset {
	r := &Ruleset{sets: make(map[Category]map[string]struct{}, len(sets))}
	for cat, exts := range sets {
		m := make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			m[normalizeExt(ext)] = struct{}{}
		}
		r.sets[cat] = m
	}
	return r
}

// Classify returns the category for a file extension. It is total:
// unknown or empty extensions yield CategoryOther. Lookup is
// case-insensitive and tolerates a missing leading dot.
func (r *Ruleset) Classify(ext string) Category {
	key := normalizeExt(ext)
	for _, cat := range classifyOrder {
		if _, ok := r.sets[cat][key]; ok {
			return cat
		}
	}
	return CategoryOther
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
