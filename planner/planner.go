package planner

import (
	"path/filepath"
	"sort"
	"strings"

	"photosync/model"
)

// Plan computes the copy actions that bring the destination up to date:
// one action per digest present in the source index and absent from the
// destination index. Actions are ordered by source path, and destination
// names are derived only from the inputs, so the same indexes always
// produce the same plan.
func Plan(src, dst *model.Index) []model.CopyAction {
	records := src.Records()
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})

	claimed := make(map[string]struct{})
	var actions []model.CopyAction

	for _, rec := range records {
		if dst.Has(rec.Digest) {
			continue
		}

		name := chooseName(rec, dst, claimed)
		claimed[name] = struct{}{}

		actions = append(actions, model.CopyAction{
			Digest:  rec.Digest,
			SrcPath: rec.Path,
			DstName: name,
			Size:    rec.Size,
		})
	}

	return actions
}

// chooseName keeps the source base name when it is free. On a collision
// with different content the name gets a short digest-derived suffix, so
// reruns pick the same name and counters are never needed.
func chooseName(rec model.FileRecord, dst *model.Index, claimed map[string]struct{}) string {
	name := filepath.Base(rec.Path)
	if free(name, dst, claimed) {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	name = stem + "-" + rec.Digest.Short() + ext
	if free(name, dst, claimed) {
		return name
	}

	// short suffix taken too: fall back to the full digest
	return rec.Digest.String() + ext
}

func free(name string, dst *model.Index, claimed map[string]struct{}) bool {
	if dst.HasName(name) {
		return false
	}

	_, taken := claimed[name]
	return !taken
}
