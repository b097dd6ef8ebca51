// Package predictor provides lifecycle, admission, and inference
// coordination for fabrication-prediction model ensembles. It is
// structured into small files by concern:
//
//   - service.go: core Service type, constructor, simple getters.
//   - config.go: ServiceConfig and package defaults.
//   - types.go: internal state types (State, Instance).
//   - errors.go: error types and helpers (IsModelNotFound, IsTooBusy, ...).
//   - adapter.go: Runtime/Session interfaces abstracting the backend.
//   - adapter_onnx.go: onnxruntime-backed Runtime.
//   - adapter_identity.go: pass-through Runtime for tests and dry runs.
//   - ensure.go: EnsureEnsemble load/warmup lifecycle.
//   - evict.go: LRU eviction to fit within the memory budget.
//   - admission.go: per-ensemble queueing and prediction admission.
//   - unload.go: graceful drain and removal of an ensemble.
//   - predict.go: prediction API entry point.
//   - stitch.go: sliding-window tiling and overlap-averaged stitching.
//   - status.go: Status reporting for the HTTP layer.
//   - events.go: lifecycle event publishing.
//
// External packages should treat this package as the orchestration layer
// and use public methods only (NewService, Ready, Models, Status, Predict,
// Unload, Close). Internal types are subject to change.
package predictor
