package feed

import "github.com/abelbrown/newshub/internal/model"

// mergeReset builds a fresh collection from a first-page result. Records whose
// URL was already seen are dropped. Records without a URL are always kept and
// never recorded.
func mergeReset(in []model.Article, seen map[string]struct{}) []model.Article {
	out := make([]model.Article, 0, len(in))
	for _, a := range in {
		if a.URL == "" {
			out = append(out, a)
			continue
		}
		if _, dup := seen[a.URL]; dup {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

// mergeAppend adds every record of a later page, duplicates included, and
// records their URLs.
// TODO: dedup pagination once the product decides overlapping pages should
// collapse; the seen set is already maintained for it.
func mergeAppend(items, in []model.Article, seen map[string]struct{}) []model.Article {
	for _, a := range in {
		if a.URL != "" {
			seen[a.URL] = struct{}{}
		}
		items = append(items, a)
	}
	return items
}
