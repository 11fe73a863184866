package stream

// A Renderer implements a way to render a specific animation.
type Renderer interface {
	CalculateFrame(runtimeMs int64) *Frame
}

// A FiniteRenderer is a Renderer with a natural end.
type FiniteRenderer interface {
	Renderer
	Done() bool
}
