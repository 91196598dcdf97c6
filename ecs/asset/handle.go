package asset

import "fmt"

// Handle references an image owned by a Server. The zero Handle is never
// issued.
type Handle uint64

func (h Handle) Valid() bool {
	return h != 0
}

func (h Handle) String() string {
	return fmt.Sprintf("asset#%d", uint64(h))
}

// LoadState is the load progress of a handle.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not-loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}
