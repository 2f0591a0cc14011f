// internal/render/render.go
package render

import "github.com/tamzrod/vision-dashboard/internal/status"

// Renderer is the delivery-only contract for display state.
// It receives a state and shows it. It has no error conditions of its own;
// implementations that talk to hardware log their own failures.
type Renderer interface {
	Render(state status.DisplayState)
}

// Func adapts a plain function to Renderer.
type Func func(state status.DisplayState)

func (f Func) Render(state status.DisplayState) { f(state) }

// Multi fans one state out to every renderer, in order.
type Multi []Renderer

func (m Multi) Render(state status.DisplayState) {
	for _, r := range m {
		if r == nil {
			continue
		}
		r.Render(state)
	}
}
