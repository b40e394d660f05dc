package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rigBuffer holds, in order: nod times [0 1], nod rotations (identity, 90deg about Z),
// bob times [0 0.5], bob translations ((0,0,0), (0,2,0)).
func rigBuffer() []byte {
	s := float32(math.Sqrt2 / 2)
	values := []float32{
		0, 1,
		0, 0, 0, 1, 0, 0, s, s,
		0, 0.5,
		0, 0, 0, 0, 2, 0,
	}
	var buf bytes.Buffer
	for _, v := range values {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

const rigJSON = `{
  "asset": {"version": "2.0"},
  "nodes": [
    {"name": "Root", "children": [1]},
    {"name": "Spine", "translation": [0, 1, 0], "children": [2]},
    {"name": "Head", "matrix": [1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0.5,0,1]},
    {"name": "Body", "children": [0]}
  ],
  "skins": [{"name": "rig", "joints": [2, 0, 1]}],
  "buffers": [{%s"byteLength": 72}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 8},
    {"buffer": 0, "byteOffset": 8, "byteLength": 32},
    {"buffer": 0, "byteOffset": 40, "byteLength": 8},
    {"buffer": 0, "byteOffset": 48, "byteLength": 24}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC4"},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "SCALAR"},
    {"bufferView": 3, "componentType": 5126, "count": 2, "type": "VEC3"}
  ],
  "animations": [
    {
      "name": "nod",
      "samplers": [{"input": 0, "output": 1}, {"input": 2, "output": 3}],
      "channels": [
        {"sampler": 0, "target": {"node": 1, "path": "rotation"}},
        {"sampler": 1, "target": {"node": 0, "path": "translation"}}
      ]
    },
    {
      "name": "body_only",
      "samplers": [{"input": 2, "output": 3}],
      "channels": [{"sampler": 0, "target": {"node": 3, "path": "translation"}}]
    }
  ]
}`

func gltfWithDataURI() string {
	uri := `"uri": "data:application/octet-stream;base64,` + base64.StdEncoding.EncodeToString(rigBuffer()) + `", `
	return fmt.Sprintf(rigJSON, uri)
}

func glbBytes(t *testing.T) []byte {
	t.Helper()
	jsonChunk := []byte(fmt.Sprintf(rigJSON, ""))
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	bin := rigBuffer()

	var buf bytes.Buffer
	total := uint32(12 + 8 + len(jsonChunk) + 8 + len(bin))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: total}))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON}))
	buf.Write(jsonChunk)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	buf.Write(bin)
	return buf.Bytes()
}

func assertRig(t *testing.T, asset *Asset) {
	t.Helper()
	require.Len(t, asset.Bones, 3)

	root, spine, head := asset.Bones[0], asset.Bones[1], asset.Bones[2]
	assert.Equal(t, "Root", root.Name, "parents come first regardless of joint order")
	assert.Equal(t, "Spine", spine.Name)
	assert.Equal(t, "Head", head.Name)

	assert.Empty(t, root.ParentID, "a parent node outside the skin does not become a bone")
	assert.Equal(t, root.ID, spine.ParentID)
	assert.Equal(t, spine.ID, head.ParentID)
	assert.Less(t, head.Position.Sub(mgl32.Vec3{0, 0.5, 0}).Len(), float32(1e-5), "matrix nodes are decomposed")
	assert.InDelta(t, 1, root.Length, 1e-6)
	assert.InDelta(t, 0.5, spine.Length, 1e-6)
	assert.Zero(t, head.Length)

	require.Len(t, asset.Clips, 1, "animations without joint channels are skipped")
	clip := asset.Clips[0]
	assert.Equal(t, "nod", clip.Name)
	assert.Equal(t, float32(1), clip.Duration)
	assert.True(t, clip.Loop)
	require.Len(t, clip.Keyframes, 3, "channel timestamps are merged")

	mid := clip.Keyframes[1]
	assert.InDelta(t, 0.5, mid.Time, 1e-6)
	require.Len(t, mid.Bones, 3, "keyframes are full snapshots")
	assert.InDelta(t, math.Pi/4, mid.Bones[spine.ID].Rotation[2], 1e-4)
	assert.InDelta(t, 2, mid.Bones[root.ID].Position[1], 1e-6)
	assert.Less(t, mid.Bones[head.ID].Position.Sub(head.Position).Len(), float32(1e-5), "unanimated joints keep their rest pose")

	last := clip.Keyframes[2]
	assert.InDelta(t, math.Pi/2, last.Bones[spine.ID].Rotation[2], 1e-4)
	assert.InDelta(t, 1, last.Bones[spine.ID].Position[1], 1e-6)

	skel := asset.Skeleton()
	assert.Equal(t, 3, skel.Len())
	w, ok := skel.WorldTransform(head.ID)
	require.True(t, ok)
	assert.Less(t, w.Position.Sub(mgl32.Vec3{0, 1.5, 0}).Len(), float32(1e-5))
}

func TestLoadReaderGLTF(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	asset, err := l.LoadReader("rig", strings.NewReader(gltfWithDataURI()), false)
	require.NoError(t, err)
	assertRig(t, asset)

	assert.Equal(t, "rig", asset.Name)
	assert.Same(t, asset, l.Get("rig"))
	assert.Equal(t, []string{"rig"}, l.Names())
}

func TestLoadReaderGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithLoop(false))
	asset, err := l.LoadReader("rig.glb", bytes.NewReader(glbBytes(t)), true)
	require.NoError(t, err)
	require.Len(t, asset.Clips, 1)
	assert.False(t, asset.Clips[0].Loop)
}

func TestLoadFileCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rig.glb")
	require.NoError(t, os.WriteFile(path, glbBytes(t), 0o644))

	l := NewLoader(BackendTypeGLTF)
	first, err := l.Load(path)
	require.NoError(t, err)
	assertRig(t, first)

	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rig.bin"), rigBuffer(), 0o644))
	path := filepath.Join(dir, "rig.gltf")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(rigJSON, `"uri": "rig.bin", `)), 0o644))

	asset, err := NewLoader(BackendTypeGLTF).Load(path)
	require.NoError(t, err)
	assertRig(t, asset)
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.Load("rig.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.LoadReader("noskin", strings.NewReader(`{"asset": {"version": "2.0"}, "nodes": [{"name": "a"}]}`), false)
	assert.ErrorIs(t, err, ErrNoSkin)

	_, err = l.LoadReader("old", strings.NewReader(`{"asset": {"version": "1.0"}}`), false)
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	_, err = l.LoadReader("bad", bytes.NewReader([]byte("not a glb file")), true)
	assert.ErrorIs(t, err, errInvalidGLBMagic)

	_, err = l.LoadReader("short", strings.NewReader(strings.Replace(gltfWithDataURI(), `"byteLength": 72`, `"byteLength": 200`, 1)), false)
	assert.ErrorIs(t, err, errBufferSizeMismatch)

	_, err = NewLoader(BackendTypeGLTF, WithSkin(4)).LoadReader("skin", strings.NewReader(gltfWithDataURI()), false)
	assert.ErrorContains(t, err, "skin index 4 out of range")

	assert.Nil(t, l.Get("bad"))
}

func TestTrackSampling(t *testing.T) {
	tr := &gltfTrack{times: []float32{0, 1}, values: [][4]float32{{0}, {10}}}
	assert.Equal(t, float32(0), tr.sample(-1)[0])
	assert.Equal(t, float32(2.5), tr.sample(0.25)[0])
	assert.Equal(t, float32(10), tr.sample(3)[0])

	tr.step = true
	assert.Equal(t, float32(0), tr.sample(0.9)[0])

	assert.Equal(t, []float32{0, 0.5, 1}, mergeTimes([]float32{1, 0.5, -1, 0, 0.50001, 1}))
}

// spinGLTF builds a single-joint rig whose rotation goes from 170 to -170 degrees about Z,
// a 20 degree arc through 180.
func spinGLTF() string {
	half := float64(170) / 2 * math.Pi / 180
	values := []float32{
		0, 1,
		0, 0, float32(math.Sin(half)), float32(math.Cos(half)),
		0, 0, float32(math.Sin(-half)), float32(math.Cos(-half)),
	}
	var buf bytes.Buffer
	for _, v := range values {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	return `{
  "asset": {"version": "2.0"},
  "nodes": [{"name": "Turret"}],
  "skins": [{"joints": [0]}],
  "buffers": [{"uri": "data:application/octet-stream;base64,` + base64.StdEncoding.EncodeToString(buf.Bytes()) + `", "byteLength": 40}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 8},
    {"buffer": 0, "byteOffset": 8, "byteLength": 32}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC4"}
  ],
  "animations": [{
    "name": "spin",
    "samplers": [{"input": 0, "output": 1}],
    "channels": [{"sampler": 0, "target": {"node": 0, "path": "rotation"}}]
  }]
}`
}

func TestLoadUnwrapsRotationsAcrossPi(t *testing.T) {
	asset, err := NewLoader(BackendTypeGLTF).LoadReader("spin", strings.NewReader(spinGLTF()), false)
	require.NoError(t, err)
	require.Len(t, asset.Bones, 1)
	require.Len(t, asset.Clips, 1)

	id := asset.Bones[0].ID
	clip := asset.Clips[0]
	require.Len(t, clip.Keyframes, 2)

	start := clip.Keyframes[0].Bones[id].Rotation[2]
	end := clip.Keyframes[1].Bones[id].Rotation[2]
	assert.InDelta(t, 170*math.Pi/180, start, 1e-4)
	assert.InDelta(t, 190*math.Pi/180, end, 1e-4, "the second key continues past pi instead of jumping to -170 degrees")

	mid := clip.Sample(0.5)[id].Rotation
	assert.InDelta(t, math.Pi, mid[2], 1e-4)
	assert.InDelta(t, 0, mid[0], 1e-4)
	assert.InDelta(t, 0, mid[1], 1e-4)
}

func TestUnwrapEuler(t *testing.T) {
	got := unwrapEuler(mgl32.Vec3{-3, 3, 0.5}, mgl32.Vec3{3, -3, 0})
	assert.InDelta(t, -3+2*math.Pi, got[0], 1e-5)
	assert.InDelta(t, 3-2*math.Pi, got[1], 1e-5)
	assert.InDelta(t, 0.5, got[2], 1e-6)
}
