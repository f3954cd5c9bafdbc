package entities

// Point is a 2D canvas coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AnnotationLine is the ordered point sequence captured during one continuous
// pointer gesture. Lines are never mutated after commit; only the whole list
// is replaced on hydration or cleared on new material.
type AnnotationLine struct {
	Points []Point `json:"points"`
}
