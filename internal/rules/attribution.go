package rules

import "sort"

// RegionIndex maps resource ids of one service to their owning region.
//
// Ids registered with Asset count towards the service's TotalAssets and the
// per-region asset totals. Ids registered with Track only take part in
// region lookups (route tables, NACLs, IAM policies...).
type RegionIndex struct {
	regions map[string]string
	counted map[string]struct{}
	order   []string
}

// NewRegionIndex returns an empty index.
func NewRegionIndex() *RegionIndex {
	return &RegionIndex{
		regions: make(map[string]string),
		counted: make(map[string]struct{}),
	}
}

// Asset registers id as an asset owned by region.
func (x *RegionIndex) Asset(id, region string) {
	if id == "" {
		return
	}
	x.Track(id, region)
	if _, ok := x.counted[id]; ok {
		return
	}
	x.counted[id] = struct{}{}
	x.order = append(x.order, id)
}

// Track registers id for region lookups without counting it as an asset.
// An empty region leaves the id unresolvable.
func (x *RegionIndex) Track(id, region string) {
	if id == "" || region == "" {
		return
	}
	if _, ok := x.regions[id]; !ok {
		x.regions[id] = region
	}
}

// Lookup returns the region owning id.
func (x *RegionIndex) Lookup(id string) (string, bool) {
	r, ok := x.regions[id]
	return r, ok
}

// Assets returns the number of counted assets.
func (x *RegionIndex) Assets() int { return len(x.order) }

// AssetsByRegion counts assets per owning region.
func (x *RegionIndex) AssetsByRegion() map[string]int {
	out := make(map[string]int)
	for _, id := range x.order {
		if r, ok := x.regions[id]; ok {
			out[r]++
		}
	}
	return out
}

// Regions returns every region that owns at least one tracked id, sorted.
func (x *RegionIndex) Regions() []string {
	seen := make(map[string]struct{})
	for _, r := range x.regions {
		seen[r] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
