// Package nav computes the next image to review.
package nav

import "github.com/1siamBot/modkit/engine/imageset"

// Direction of travel through the image list
type Direction int

const (
	Next Direction = 1
	Prev Direction = -1
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Tagged reports whether an image already has tags
type Tagged interface {
	HasAnyTag(image string) bool
}

// Result of a navigation step. Index is only meaningful when Exhausted is false.
type Result struct {
	Index     int
	Exhausted bool
}

// Valid reports whether path may be shown under the current policy
func Valid(path string, tagged Tagged, skipTagged bool) bool {
	if !imageset.IsEligible(path) {
		return false
	}
	return !skipTagged || tagged == nil || !tagged.HasAnyTag(path)
}

// Advance steps from current in dir, wrapping around, until it finds a valid
// image. After len(paths) steps every candidate (the start included) has been
// tried and the result is Exhausted.
func Advance(dir Direction, current int, paths []string, tagged Tagged, skipTagged bool) Result {
	n := len(paths)
	if n == 0 {
		return Result{Exhausted: true}
	}
	step := 1
	if dir == Prev {
		step = -1
	}
	for i := 1; i <= n; i++ {
		idx := wrap(current+step*i, n)
		if Valid(paths[idx], tagged, skipTagged) {
			return Result{Index: idx}
		}
	}
	return Result{Index: current, Exhausted: true}
}

// First returns the first valid index scanning forward from 0
func First(paths []string, tagged Tagged, skipTagged bool) Result {
	return Advance(Next, len(paths)-1, paths, tagged, skipTagged)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
