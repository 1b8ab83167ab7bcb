package filter

import (
	"sort"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// TagFilters is the set of filters assigning one tag.
type TagFilters struct {
	Tag     string         `json:"tag"`
	Filters []model.Filter `json:"filters"`
}

// GroupByTag buckets filters by the tag they assign, most used tag first.
// Filters that assign no tag are collected under model.Untagged. Ties keep
// tag name order.
func GroupByTag(filters []model.Filter) []TagFilters {
	byTag := make(map[string][]model.Filter)
	for _, f := range filters {
		tag := f.Tag
		if tag == "" {
			tag = model.Untagged
		}
		byTag[tag] = append(byTag[tag], f)
	}
	if len(byTag) == 0 {
		return nil
	}

	out := make([]TagFilters, 0, len(byTag))
	for tag, fs := range byTag {
		out = append(out, TagFilters{Tag: tag, Filters: fs})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Filters) != len(out[j].Filters) {
			return len(out[i].Filters) > len(out[j].Filters)
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Tags returns the assigned tags, most used first, excluding model.Untagged.
func Tags(filters []model.Filter) []string {
	var tags []string
	for _, g := range GroupByTag(filters) {
		if g.Tag == model.Untagged {
			continue
		}
		tags = append(tags, g.Tag)
	}
	return tags
}
