// Package documents defines the document and record types that flow through
// a runcat catalog. A run is recorded on disk as an ordered stream of
// (name, document) pairs: one "start" document, any number of intermediate
// documents, and an optional trailing "stop" document.
package documents

import "fmt"

// Document is an opaque mapping of string keys to arbitrary values. runcat
// never interprets a document beyond its record name and, for start
// documents, the "uid" field.
type Document = map[string]any

// Record names understood by the loader. Every other name is carried through
// opaquely.
const (
	NameStart      = "start"
	NameDescriptor = "descriptor"
	NameEvent      = "event"
	NameStop       = "stop"
)

// Record is a single named document read from a run file.
type Record struct {
	Name string
	Doc  Document
}

// NDArray is a native numeric array decoded from the binary encoding.
// Data holds a flat typed slice ([]float64, []float32, []int64, []int32,
// []uint8) in row-major order described by Shape.
type NDArray struct {
	Shape []int
	Dtype string
	Data  any
}

// Len returns the number of elements described by the array shape.
func (a *NDArray) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// UID extracts the run identity from a start document.
func UID(start Document) (string, error) {
	v, ok := start["uid"]
	if !ok {
		return "", fmt.Errorf("start document has no uid field")
	}
	uid, ok := v.(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("start document uid is not a non-empty string: %v", v)
	}
	return uid, nil
}
