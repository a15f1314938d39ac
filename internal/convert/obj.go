package convert

import (
	"fmt"
	"strings"

	"slicerlink/internal/mesh"
)

// OBJConverter encodes models as Wavefront OBJ text. Shared vertices are
// written once and referenced by index.
type OBJConverter struct{}

// Convert implements Converter.
func (OBJConverter) Convert(model *mesh.Model) ([]byte, error) {
	if model.IsEmpty() {
		return nil, fmt.Errorf("model has no triangles")
	}

	index := make(map[mesh.Vec3]int)
	var order []mesh.Vec3
	for _, tri := range model.Triangles {
		for _, v := range [3]mesh.Vec3{tri.V1, tri.V2, tri.V3} {
			if _, seen := index[v]; !seen {
				order = append(order, v)
				index[v] = len(order)
			}
		}
	}

	var b strings.Builder
	b.WriteString("# exported by slicerlink\n")
	if model.Name != "" {
		fmt.Fprintf(&b, "o %s\n", sanitizeObjectName(model.Name))
	}

	for _, v := range order {
		fmt.Fprintf(&b, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, tri := range model.Triangles {
		fmt.Fprintf(&b, "f %d %d %d\n", index[tri.V1], index[tri.V2], index[tri.V3])
	}

	return []byte(b.String()), nil
}

// FileExtension implements Converter.
func (OBJConverter) FileExtension() string { return "obj" }

// ContentType implements Converter.
func (OBJConverter) ContentType() string { return "model/obj" }

// sanitizeObjectName keeps the o-line single-token; OBJ object names cannot
// carry whitespace.
func sanitizeObjectName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
