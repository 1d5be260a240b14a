package surface

// Writer appends geometry to a Surface.
type Writer struct {
	s *Surface
}

// NewWriter returns a writer appending to s.
func NewWriter(s *Surface) *Writer {
	return &Writer{s: s}
}

// Surface returns the surface being written.
func (w *Writer) Surface() *Surface { return w.s }

// AddVertex appends v and returns its index.
func (w *Writer) AddVertex(v Vertex) Index {
	i := Index(len(w.s.Vertices))
	w.s.Vertices = append(w.s.Vertices, v)
	return i
}

// AddIndex appends a raw index.
func (w *Writer) AddIndex(i Index) {
	w.s.Indices = append(w.s.Indices, i)
}

// AddTriangle appends three new vertices and the triangle referencing them.
func (w *Writer) AddTriangle(v0, v1, v2 Vertex) {
	w.AddIndex(w.AddVertex(v0))
	w.AddIndex(w.AddVertex(v1))
	w.AddIndex(w.AddVertex(v2))
}

// AddQuad appends four vertices split along the v1-v2 diagonal into the
// triangles (v0, v1, v2) and (v2, v1, v3).
func (w *Writer) AddQuad(v0, v1, v2, v3 Vertex) {
	i0 := w.AddVertex(v0)
	i1 := w.AddVertex(v1)
	i2 := w.AddVertex(v2)
	i3 := w.AddVertex(v3)
	for _, i := range [6]Index{i0, i1, i2, i2, i1, i3} {
		w.AddIndex(i)
	}
}

// AddInstance appends an instance.
func (w *Writer) AddInstance(inst Instance) {
	w.s.Instances = append(w.s.Instances, inst)
}
