//go:build js && wasm

package browser

import (
	"syscall/js"
)

// RAFPresenter is a probe.Presenter backed by requestAnimationFrame.
type RAFPresenter struct {
	window js.Value
}

// NewRAFPresenter creates a presenter for the global window.
func NewRAFPresenter() *RAFPresenter {
	return &RAFPresenter{window: js.Global()}
}

// RequestPresent calls fn once, after the next frame has been handed to
// the compositor. Both JS callbacks are released after they fire.
func (p *RAFPresenter) RequestPresent(fn func()) {
	var raf js.Func
	raf = js.FuncOf(func(this js.Value, args []js.Value) any {
		raf.Release()

		var after js.Func
		after = js.FuncOf(func(this js.Value, args []js.Value) any {
			after.Release()
			fn()
			return nil
		})
		p.window.Call("setTimeout", after, 0)
		return nil
	})
	p.window.Call("requestAnimationFrame", raf)
}
