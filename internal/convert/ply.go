package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"slicerlink/internal/mesh"
)

// PLYConverter encodes models as binary little-endian PLY. Shared vertices
// are written once and referenced by index.
type PLYConverter struct{}

// Convert implements Converter.
func (PLYConverter) Convert(model *mesh.Model) ([]byte, error) {
	if model.IsEmpty() {
		return nil, fmt.Errorf("model has no triangles")
	}

	index := make(map[mesh.Vec3]int32)
	var order []mesh.Vec3
	for _, tri := range model.Triangles {
		for _, v := range [3]mesh.Vec3{tri.V1, tri.V2, tri.V3} {
			if _, seen := index[v]; !seen {
				order = append(order, v)
				index[v] = int32(len(order) - 1)
			}
		}
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "ply\n")
	fmt.Fprintf(buf, "format binary_little_endian 1.0\n")
	fmt.Fprintf(buf, "comment exported by slicerlink\n")
	fmt.Fprintf(buf, "element vertex %d\n", len(order))
	fmt.Fprintf(buf, "property float x\n")
	fmt.Fprintf(buf, "property float y\n")
	fmt.Fprintf(buf, "property float z\n")
	fmt.Fprintf(buf, "element face %d\n", model.TriangleCount())
	fmt.Fprintf(buf, "property list uchar int vertex_indices\n")
	fmt.Fprintf(buf, "end_header\n")

	for _, v := range order {
		if err := writeVec3(buf, v); err != nil {
			return nil, fmt.Errorf("writing PLY vertex: %w", err)
		}
	}

	for _, tri := range model.Triangles {
		if err := buf.WriteByte(3); err != nil {
			return nil, fmt.Errorf("writing PLY face: %w", err)
		}
		face := [3]int32{index[tri.V1], index[tri.V2], index[tri.V3]}
		if err := binary.Write(buf, binary.LittleEndian, face); err != nil {
			return nil, fmt.Errorf("writing PLY face: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// FileExtension implements Converter.
func (PLYConverter) FileExtension() string { return "ply" }

// ContentType implements Converter.
func (PLYConverter) ContentType() string { return "model/ply" }
