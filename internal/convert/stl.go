package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"slicerlink/internal/mesh"
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50
)

// STLConverter encodes models as binary little-endian STL.
type STLConverter struct{}

// Convert implements Converter.
func (STLConverter) Convert(model *mesh.Model) ([]byte, error) {
	if model.IsEmpty() {
		return nil, fmt.Errorf("model has no triangles")
	}

	buf := bytes.NewBuffer(make([]byte, 0, stlHeaderSize+4+model.TriangleCount()*stlRecordSize))

	header := make([]byte, stlHeaderSize)
	copy(header, "exported by slicerlink")
	buf.Write(header)

	if err := binary.Write(buf, binary.LittleEndian, uint32(model.TriangleCount())); err != nil {
		return nil, fmt.Errorf("writing STL triangle count: %w", err)
	}

	for _, tri := range model.Triangles {
		normal := tri.Normal
		if normal == (mesh.Vec3{}) {
			normal = tri.ComputedNormal()
		}
		for _, v := range [4]mesh.Vec3{normal, tri.V1, tri.V2, tri.V3} {
			if err := writeVec3(buf, v); err != nil {
				return nil, fmt.Errorf("writing STL triangle: %w", err)
			}
		}
		if err := binary.Write(buf, binary.LittleEndian, uint16(0)); err != nil {
			return nil, fmt.Errorf("writing STL attribute bytes: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// FileExtension implements Converter.
func (STLConverter) FileExtension() string { return "stl" }

// ContentType implements Converter.
func (STLConverter) ContentType() string { return "model/stl" }

func writeVec3(buf *bytes.Buffer, v mesh.Vec3) error {
	for _, f := range [3]float32{v.X, v.Y, v.Z} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
