package export

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qfg5tools/qfg5/anm"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/mdl"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Pose selects one keyframe of an animation to apply to a model.
type Pose struct {
	Track *anm.Track
	Frame int
}

// BlockMatrix returns the transform of a keyframe: its rotation followed by
// its translation.
func BlockMatrix(b anm.Block) mgl32.Mat4 {
	// Rotation is row-major, Mat3 is column-major.
	rot := mgl32.Mat3(b.Rotation).Transpose()
	return mgl32.Translate3D(b.Translation[0], b.Translation[1], b.Translation[2]).Mul4(rot.Mat4())
}

// nodeMatrix widens m to the column-major layout of a glTF node.
func nodeMatrix(m mgl32.Mat4) (out [16]float64) {
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

// Model builds a glTF document with one node per submesh. Faces are unrolled
// so that every corner carries the face normal. When pose is not nil, each
// node is transformed by the keyframe of its submesh.
func Model(m *mdl.Model, pose *Pose) (*gltf.Document, error) {
	if pose != nil {
		if pose.Track == nil {
			return nil, errors.New("pose without track")
		}
		if err := pose.Track.CheckModel(len(m.SubMeshes)); err != nil {
			return nil, err
		}
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "qfg5-export"
	for i, sm := range m.SubMeshes {
		node := &gltf.Node{Name: sm.Name}
		if pose != nil {
			blocks := pose.Track.Anims[i].Blocks
			if pose.Frame < 0 || pose.Frame >= len(blocks) {
				return nil, fmt.Errorf("submesh %d: frame %d out of range [0, %d)", i, pose.Frame, len(blocks))
			}
			node.Matrix = nodeMatrix(BlockMatrix(blocks[pose.Frame]))
		}
		if len(sm.Faces) > 0 {
			mesh, err := subMesh(doc, &sm)
			if err != nil {
				return nil, fmt.Errorf("submesh %d: %w", i, err)
			}
			doc.Meshes = append(doc.Meshes, mesh)
			node.Mesh = gltf.Index(len(doc.Meshes) - 1)
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

func subMesh(doc *gltf.Document, sm *mdl.SubMesh) (*gltf.Mesh, error) {
	n := len(sm.Faces) * 3
	positions := make([][3]float32, 0, n)
	normals := make([][3]float32, 0, n)
	uvs := make([][2]float32, 0, n)
	indices := make([]uint32, 0, n)
	for i, f := range sm.Faces {
		for c := 0; c < 3; c++ {
			vi, ti := f.Vertices[c], f.TexCoords[c]
			if int64(vi) >= int64(len(sm.Vertices)) {
				return nil, errors.FieldError{Kind: errors.ErrCrossCheck, Field: fmt.Sprintf("face %d vertex", i), Expected: int64(len(sm.Vertices)), Actual: vi}
			}
			if int64(ti) >= int64(len(sm.TexCoords)) {
				return nil, errors.FieldError{Kind: errors.ErrCrossCheck, Field: fmt.Sprintf("face %d texture coordinate", i), Expected: int64(len(sm.TexCoords)), Actual: ti}
			}
			v, t := sm.Vertices[vi], sm.TexCoords[ti]
			indices = append(indices, uint32(len(positions)))
			positions = append(positions, [3]float32{v.X, v.Y, v.Z})
			normals = append(normals, f.Normal)
			uvs = append(uvs, [2]float32{t.U, t.V})
		}
	}

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(doc, normals),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
	}
	return &gltf.Mesh{Name: sm.Name, Primitives: []*gltf.Primitive{prim}}, nil
}

// WriteModel encodes the document built by Model as binary glTF.
func WriteModel(w io.Writer, m *mdl.Model, pose *Pose) error {
	doc, err := Model(m, pose)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
