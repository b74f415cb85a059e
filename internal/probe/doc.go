// Package probe measures the time from a logical update to the host's
// confirmation that the display has been repainted.
//
// A caller applies an update and immediately calls Arm. The probe records
// the issue time, asks the host Presenter for a one-shot presentation
// notification, and when that fires records the presentation time. The
// difference is the sample's latency.
//
// The notification comes from the main context. Work the host does after
// that point (compositing, GPU execution, scanout) is invisible to the
// probe: a slow downstream stage does not change the measured latency.
// The host package models this so tests can observe the gap.
//
// The probe has no timeout or retry policy. A presentation that never
// arrives leaves its Pending unresolved; callers bound their own waits
// with Pending.Wait.
package probe
