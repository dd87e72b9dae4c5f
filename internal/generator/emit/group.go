// Package emit synthesizes accessor source files from validated property
// records, one file per owning type.
package emit

import (
	"fmt"

	"github.com/beacon-tools/beacon/internal/generator/model"
	beaconstrings "github.com/beacon-tools/beacon/internal/util/strings"
)

// Group is every record owned by one type, in extraction order.
type Group struct {
	Owner   model.TypeDescriptor
	Records []model.PropertyRecord
}

// GroupRecords partitions records by owning type, preserving first-seen
// group order and record order within each group. Two records whose group
// keys match but whose descriptors differ indicate a corrupted pass, which
// is a programming error, and panic.
func GroupRecords(records []model.PropertyRecord) []Group {
	var groups []Group
	byKey := make(map[string]int)
	for _, r := range records {
		key := r.Owner.GroupKey()
		if i, ok := byKey[key]; ok {
			if !groups[i].Owner.Equal(r.Owner) {
				panic(fmt.Sprintf("emit: group key %s maps to distinct descriptors %s and %s",
					key, groups[i].Owner.QualifiedName(), r.Owner.QualifiedName()))
			}
			groups[i].Records = append(groups[i].Records, r)
			continue
		}
		byKey[key] = len(groups)
		groups = append(groups, Group{Owner: r.Owner, Records: []model.PropertyRecord{r}})
	}
	return groups
}

// Filename returns the output file name for a group's owning type.
func Filename(owner model.TypeDescriptor) string {
	return beaconstrings.ToSnakeCase(owner.Name) + "_beacon.go"
}

// Hash digests the group for incremental caching: a group whose hash is
// unchanged between passes needs no re-emission.
func (g Group) Hash() string {
	return model.HashRecords(g.Records)
}
