// Package browser provides the probe's host capabilities inside a web
// page when compiled with GOOS=js GOARCH=wasm.
//
// RAFPresenter implements probe.Presenter with requestAnimationFrame
// followed by a zero-delay setTimeout. The animation frame callback runs
// just before the browser paints; the timeout fires once the frame has
// been handed to the compositor. It does not wait for the compositor or
// the GPU, which is the measurement gap described in package probe.
//
// PerformanceClock implements probe.Clock with performance.now.
package browser
