package types

import "strings"

// Face flags identify the RVE boundary faces a node lies on
type Face uint8

const (
	FaceNone Face = 0
	FaceX0   Face = 1 << iota
	FaceX1
	FaceY0
	FaceY1
	FaceZ0
	FaceZ1
)

var faceNames = []struct {
	f    Face
	name string
}{
	{FaceX0, "x0"}, {FaceX1, "x1"},
	{FaceY0, "y0"}, {FaceY1, "y1"},
	{FaceZ0, "z0"}, {FaceZ1, "z1"},
}

func (f Face) IsBoundary() bool { return f != FaceNone }

func (f Face) Has(g Face) bool { return f&g != 0 }

func (f Face) String() string {
	if f == FaceNone {
		return "interior"
	}
	var names []string
	for _, fn := range faceNames {
		if f.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}
