package calendar

type tickMode int

const (
	tickAll tickMode = iota
	tickNone
	tickList
	tickStride
)

// Ticks selects which labels of a label set are drawn. The zero value
// selects all of them.
type Ticks struct {
	mode   tickMode
	list   []int
	stride int
}

// AllTicks labels every position.
func AllTicks() Ticks { return Ticks{mode: tickAll} }

// NoTicks labels nothing.
func NoTicks() Ticks { return Ticks{mode: tickNone} }

// TickList labels only the given indices.
func TickList(indices ...int) Ticks {
	return Ticks{mode: tickList, list: append([]int(nil), indices...)}
}

// TickEvery labels every n-th position, starting at n/2 so the first label
// sits in the middle of its stride.
func TickEvery(n int) Ticks { return Ticks{mode: tickStride, stride: n} }

// Indices resolves the selection against a label set of length n. Explicit
// lists are returned as given, even when they reach past n.
func (t Ticks) Indices(n int) []int {
	switch t.mode {
	case tickNone:
		return nil
	case tickList:
		return append([]int(nil), t.list...)
	case tickStride:
		if t.stride <= 0 {
			return nil
		}
		var out []int
		for i := t.stride / 2; i < n; i += t.stride {
			out = append(out, i)
		}
		return out
	default:
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
}

func (t Ticks) String() string {
	switch t.mode {
	case tickNone:
		return "none"
	case tickList:
		return "list"
	case tickStride:
		return "stride"
	default:
		return "all"
	}
}
