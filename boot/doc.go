// Package boot drives the startup sequence for presentation modules:
// capability probe, module load with optional shared memory, worker-pool
// bring-up, and entry-point invocation.
//
// Three profiles mirror the deployment flavors of the original browser
// bundles: a plain loader, a loader with an explicit failure handler, and
// a threaded loader that configures shared growable memory and starts a
// worker pool before calling the entry point.
package boot
