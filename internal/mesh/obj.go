package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DecodeOBJ reads a Wavefront OBJ stream into a Model. Faces with more than
// three vertices are fan-triangulated; facet normals are recomputed from the
// winding order (vn lines describe per-vertex shading normals, which the
// triangle model does not carry).
func DecodeOBJ(r io.Reader, name string) (*Model, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		vertices  []Vec3
		triangles []Triangle
	)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vertices = append(vertices, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				i, err := resolveVertexRef(ref, len(vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			for i := 1; i < len(idx)-1; i++ {
				tri := Triangle{
					V1: vertices[idx[0]],
					V2: vertices[idx[i]],
					V3: vertices[idx[i+1]],
				}
				tri.Normal = tri.ComputedNormal()
				triangles = append(triangles, tri)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	return &Model{Name: name, Triangles: triangles}, nil
}

// resolveVertexRef turns an OBJ face vertex reference ("7", "7/2/3", "-1")
// into a zero-based index into the vertex list. Negative references count back
// from the most recently declared vertex.
func resolveVertexRef(ref string, vertexCount int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", ref, err)
	}
	if n < 0 {
		n = vertexCount + n + 1
	}
	if n < 1 || n > vertexCount {
		return 0, fmt.Errorf("face index %d out of range (have %d vertices)", n, vertexCount)
	}
	return n - 1, nil
}
