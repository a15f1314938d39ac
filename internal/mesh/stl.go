package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	stlHeaderSize = 80
	// 12 little-endian float32 (normal + 3 vertices) plus a 2-byte attribute
	stlRecordSize = 50
)

// ErrEmptyModelFile is returned when a model stream holds no data at all.
var ErrEmptyModelFile = errors.New("model file is empty")

// DecodeSTL reads a binary or ASCII STL stream into a Model.
// The variant is detected from the content, not the filename.
func DecodeSTL(r io.Reader, name string) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading STL data: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyModelFile
	}

	if isASCIISTL(data) {
		return decodeASCIISTL(data, name)
	}
	return decodeBinarySTL(data, name)
}

// isASCIISTL reports whether the data looks like the ASCII dialect. Binary
// files are allowed to start with "solid" inside their 80-byte header, so the
// prefix alone is not enough; a real ASCII body names a facet (or closes an
// empty solid) early on.
func isASCIISTL(data []byte) bool {
	head := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(head, []byte("solid")) {
		return false
	}

	probe := head
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.Contains(probe, []byte("facet")) || bytes.Contains(probe, []byte("endsolid"))
}

func decodeBinarySTL(data []byte, name string) (*Model, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("binary STL too short: %d bytes", len(data))
	}

	count := binary.LittleEndian.Uint32(data[stlHeaderSize : stlHeaderSize+4])
	expected := stlHeaderSize + 4 + int(count)*stlRecordSize
	if len(data) < expected {
		return nil, fmt.Errorf("binary STL truncated: header declares %d triangles (%d bytes), have %d bytes",
			count, expected, len(data))
	}

	triangles := make([]Triangle, 0, count)
	offset := stlHeaderSize + 4
	for i := uint32(0); i < count; i++ {
		rec := data[offset : offset+stlRecordSize]
		triangles = append(triangles, Triangle{
			Normal: readVec3(rec[0:12]),
			V1:     readVec3(rec[12:24]),
			V2:     readVec3(rec[24:36]),
			V3:     readVec3(rec[36:48]),
		})
		offset += stlRecordSize
	}

	return &Model{Name: name, Triangles: triangles}, nil
}

func readVec3(b []byte) Vec3 {
	return Vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

func decodeASCIISTL(data []byte, name string) (*Model, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var (
		triangles []Triangle
		current   Triangle
		verts     int
		inFacet   bool
		solidName string
	)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				solidName = fields[1]
			}
		case "facet":
			current = Triangle{}
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := parseVec3(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				current.Normal = n
			}
			verts = 0
			inFacet = true
		case "vertex":
			if !inFacet {
				return nil, fmt.Errorf("line %d: vertex outside facet", lineNo)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			switch verts {
			case 0:
				current.V1 = v
			case 1:
				current.V2 = v
			case 2:
				current.V3 = v
			default:
				return nil, fmt.Errorf("line %d: facet has more than 3 vertices", lineNo)
			}
			verts++
		case "endfacet":
			if verts != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", lineNo, verts)
			}
			triangles = append(triangles, current)
			inFacet = false
		case "outer", "endloop", "endsolid":
			// structural keywords, nothing to capture
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading STL data: %w", err)
	}

	if name == "" {
		name = solidName
	}
	return &Model{Name: name, Triangles: triangles}, nil
}

func parseVec3(fields []string) (Vec3, error) {
	var coords [3]float32
	for i, f := range fields[:3] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Vec3{}, fmt.Errorf("bad coordinate %q: %w", f, err)
		}
		coords[i] = float32(val)
	}
	return Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
