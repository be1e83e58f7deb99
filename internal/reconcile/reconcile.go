// Package reconcile computes which present names are not referenced by any
// source, comparing them through a normalization function. It performs no I/O:
// callers load the referenced and present names and act on the result.
package reconcile

import "sort"

// Result holds the outcome of a reconciliation.
type Result struct {
	Referenced int // distinct normalized referenced keys
	Present    int // distinct normalized present keys

	// Orphans lists the original present names whose key is not referenced,
	// sorted. Every original is listed, also when several share a key.
	Orphans []string

	// Collisions maps keys shared by more than one present original to
	// those originals, sorted.
	Collisions map[string][]string
}

// Index maps normalized keys to the sorted, distinct originals producing them.
type Index map[string][]string

// NewIndex builds an Index of names under normalize.
func NewIndex(names []string, normalize Normalizer) Index {
	ix := make(Index, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		key := normalize(name)
		ix[key] = append(ix[key], name)
	}
	for key := range ix {
		sort.Strings(ix[key])
	}
	return ix
}

// Keys returns the sorted keys of the index.
func (ix Index) Keys() []string {
	keys := make([]string, 0, len(ix))
	for key := range ix {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Orphans returns the present names whose normalized key does not occur
// among the normalized referenced names. Referenced names normalizing to the
// empty string reference nothing.
func Orphans(referenced, present []string, normalize Normalizer) Result {
	refs := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		key := normalize(name)
		if key == "" {
			continue
		}
		refs[key] = struct{}{}
	}

	ix := NewIndex(present, normalize)
	res := Result{
		Referenced: len(refs),
		Present:    len(ix),
	}

	for _, key := range ix.Keys() {
		originals := ix[key]
		if len(originals) > 1 {
			if res.Collisions == nil {
				res.Collisions = make(map[string][]string)
			}
			res.Collisions[key] = originals
		}
		if _, ok := refs[key]; ok {
			continue
		}
		res.Orphans = append(res.Orphans, originals...)
	}
	sort.Strings(res.Orphans)

	return res
}
