package xbrl

import (
	"fmt"
	"sort"
)

// BaseSetKey identifies a base set. Empty fields are the null wildcard of
// the coarser keys.
type BaseSetKey struct {
	Arcrole   string
	LinkRole  string
	LinkQName QName
	ArcQName  QName
}

func (k BaseSetKey) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", k.Arcrole, k.LinkRole, k.LinkQName, k.ArcQName)
}

// BaseSetIndex maps base set keys to the extended links contributing
// relationships to them. Keys keep their insertion order until Sort.
type BaseSetIndex struct {
	keys    []BaseSetKey
	sets    map[BaseSetKey][]Node
	members map[BaseSetKey]map[Node]bool
}

// NewBaseSetIndex returns an empty index.
func NewBaseSetIndex() *BaseSetIndex {
	return &BaseSetIndex{
		sets:    make(map[BaseSetKey][]Node),
		members: make(map[BaseSetKey]map[Node]bool),
	}
}

// Add appends link under key unless it is already there. A nil link only
// registers the key.
func (b *BaseSetIndex) Add(key BaseSetKey, link Node) {
	if _, ok := b.sets[key]; !ok {
		b.keys = append(b.keys, key)
		b.sets[key] = nil
		b.members[key] = make(map[Node]bool)
	}
	if link == nil || b.members[key][link] {
		return
	}
	b.members[key][link] = true
	b.sets[key] = append(b.sets[key], link)
}

// Get returns the links of key in discovery order.
func (b *BaseSetIndex) Get(key BaseSetKey) []Node {
	return b.sets[key]
}

// Has reports whether key is registered, even with no links.
func (b *BaseSetIndex) Has(key BaseSetKey) bool {
	_, ok := b.sets[key]
	return ok
}

// Keys returns the registered keys.
func (b *BaseSetIndex) Keys() []BaseSetKey {
	out := make([]BaseSetKey, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of keys.
func (b *BaseSetIndex) Len() int {
	return len(b.keys)
}

// Sort stably orders the keys by link role, then arcrole.
func (b *BaseSetIndex) Sort() {
	sort.SliceStable(b.keys, func(i, j int) bool {
		if b.keys[i].LinkRole != b.keys[j].LinkRole {
			return b.keys[i].LinkRole < b.keys[j].LinkRole
		}
		return b.keys[i].Arcrole < b.keys[j].Arcrole
	})
}

// addArcrole registers link under the full key of an arc and its three
// coarser keys.
func (b *BaseSetIndex) addArcrole(arcrole, role string, linkQn, arcQn QName, link Node) {
	b.Add(BaseSetKey{arcrole, role, linkQn, arcQn}, link)
	b.Add(BaseSetKey{arcrole, role, QName{}, QName{}}, link)
	b.Add(BaseSetKey{arcrole, "", QName{}, QName{}}, link)
	b.Add(BaseSetKey{arcrole, "", linkQn, arcQn}, link)
}

// addUmbrella registers link under an umbrella arcrole with and without its role.
func (b *BaseSetIndex) addUmbrella(umbrella, role string, link Node) {
	b.Add(BaseSetKey{Arcrole: umbrella}, link)
	b.Add(BaseSetKey{Arcrole: umbrella, LinkRole: role}, link)
}
