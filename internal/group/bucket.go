package group

// Bucket is a keyed slice of items with the sum of their amounts.
type Bucket[T any] struct {
	Key   string
	Total int64
	Items []T
}

// Partition splits items into buckets by key, in first-seen key order.
// Item order within a bucket is input order.
func Partition[T any](items []T, key func(T) string, amount func(T) int64) []Bucket[T] {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int)
	var out []Bucket[T]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Bucket[T]{Key: k})
		}
		out[i].Items = append(out[i].Items, item)
		out[i].Total += amount(item)
	}
	return out
}
