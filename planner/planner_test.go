package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"photosync/digest"
	"photosync/model"
)

func testDigest(id byte) digest.Digest {
	var d digest.Digest
	for i := range d {
		d[i] = id
	}
	return d
}

func indexOf(recs ...model.FileRecord) *model.Index {
	ix := model.NewIndex()
	for _, rec := range recs {
		ix.Add(rec)
	}
	return ix
}

func TestPlan_CopiesOnlyMissingDigests(t *testing.T) {
	src := indexOf(
		model.FileRecord{Path: "/in/IMG_0001.jpg", Digest: testDigest(1), Size: 10},
		model.FileRecord{Path: "/in/IMG_0002.jpg", Digest: testDigest(2), Size: 20},
	)

	dst := indexOf(
		model.FileRecord{Path: "/out/old.jpg", Digest: testDigest(1), Size: 10},
	)
	dst.AddName("old.jpg")

	actions := Plan(src, dst)
	require.Len(t, actions, 1)
	require.Equal(t, testDigest(2), actions[0].Digest)
	require.Equal(t, "/in/IMG_0002.jpg", actions[0].SrcPath)
	require.Equal(t, "IMG_0002.jpg", actions[0].DstName)
}

func TestPlan_EmptyWhenNothingNew(t *testing.T) {
	src := indexOf(model.FileRecord{Path: "/in/a.jpg", Digest: testDigest(1)})
	dst := indexOf(model.FileRecord{Path: "/out/b.jpg", Digest: testDigest(1)})

	require.Empty(t, Plan(src, dst))
}

func TestPlan_NameCollisionGetsDigestSuffix(t *testing.T) {
	src := indexOf(
		model.FileRecord{Path: "/in/IMG_0001.jpg", Digest: testDigest(2)},
	)

	// destination already holds a *different* photo under the same name
	dst := indexOf(
		model.FileRecord{Path: "/out/IMG_0001.jpg", Digest: testDigest(1)},
	)
	dst.AddName("IMG_0001.jpg")

	actions := Plan(src, dst)
	require.Len(t, actions, 1)
	require.Equal(t, "IMG_0001-"+testDigest(2).Short()+".jpg", actions[0].DstName)
}

func TestPlan_InPlanNameCollision(t *testing.T) {
	// two distinct photos, same base name, nothing at the destination yet
	src := indexOf(
		model.FileRecord{Path: "/in/a/IMG_0001.jpg", Digest: testDigest(1)},
		model.FileRecord{Path: "/in/b/IMG_0001.jpg", Digest: testDigest(2)},
	)
	dst := model.NewIndex()

	actions := Plan(src, dst)
	require.Len(t, actions, 2)
	require.Equal(t, "IMG_0001.jpg", actions[0].DstName)
	require.Equal(t, "IMG_0001-"+testDigest(2).Short()+".jpg", actions[1].DstName)
}

func TestPlan_Deterministic(t *testing.T) {
	src := indexOf(
		model.FileRecord{Path: "/in/c.jpg", Digest: testDigest(3)},
		model.FileRecord{Path: "/in/a.jpg", Digest: testDigest(1)},
		model.FileRecord{Path: "/in/b.jpg", Digest: testDigest(2)},
	)
	dst := model.NewIndex()

	first := Plan(src, dst)
	second := Plan(src, dst)
	require.Equal(t, first, second)

	require.Equal(t, "/in/a.jpg", first[0].SrcPath)
	require.Equal(t, "/in/b.jpg", first[1].SrcPath)
	require.Equal(t, "/in/c.jpg", first[2].SrcPath)
}
