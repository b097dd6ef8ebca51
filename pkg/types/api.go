package types

// PredictRequest is the payload for POST /predict.
type PredictRequest struct {
	// Ensemble identifier. If empty, the server default is used.
	// example: p_Ante_NanoSOI_v5-d4
	Model string `json:"model,omitempty" example:"p_Ante_NanoSOI_v5-d4"`
	// Member numbers to average. Empty selects every member in the store.
	// example: [0,1,2]
	Nums []int `json:"nums,omitempty"`
	// Device layout image as base64-encoded PNG, grayscale material fraction.
	Image string `json:"image"`
	// Physical device length in nanometers along the image width.
	// example: 2560
	DeviceLength float64 `json:"device_length" example:"2560"`
	// Physical resolution in nanometers per pixel.
	// example: 10
	Resolution float64 `json:"resolution" example:"10"`
	// Stride between tile origins in pixels. 0 selects half the tile size.
	// example: 64
	StepLength int `json:"step_length,omitempty" example:"64"`
	// If true, threshold the probability map at 0.5.
	// example: false
	Binary bool `json:"binary,omitempty" example:"false"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// Ensemble identifier that served the request.
	// example: p_Ante_NanoSOI_v5-d4
	Model string `json:"model" example:"p_Ante_NanoSOI_v5-d4"`
	// Member numbers that were averaged.
	Nums []int `json:"nums"`
	// Prediction map as base64-encoded 8-bit grayscale PNG, same shape as the input.
	Prediction string `json:"prediction"`
	// Output width in pixels.
	// example: 256
	Width int `json:"width" example:"256"`
	// Output height in pixels.
	// example: 256
	Height int `json:"height" example:"256"`
	// Whether the map was binarized.
	// example: false
	Binary bool `json:"binary" example:"false"`
	// Wall-clock prediction time in milliseconds.
	// example: 412
	ElapsedMS int64 `json:"elapsed_ms" example:"412"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// Ensemble members available in the model store.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: p_Ante_NanoSOI_v9
	Error string `json:"error" example:"model not found: p_Ante_NanoSOI_v9"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// InstanceStatus summarizes a loaded ensemble for /status.
type InstanceStatus struct {
	// Key of the loaded ensemble (model id plus member numbers).
	// example: p_Ante_NanoSOI_v5-d4#0,1,2
	Key string `json:"key" example:"p_Ante_NanoSOI_v5-d4#0,1,2"`
	// Model id this ensemble was resolved from.
	// example: p_Ante_NanoSOI_v5-d4
	ModelID string `json:"model_id" example:"p_Ante_NanoSOI_v5-d4"`
	// Current lifecycle state (loading, ready, draining, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Number of loaded ensemble members.
	// example: 3
	Members int `json:"members" example:"3"`
	// Native tile size shared by the members, in pixels.
	// example: 128
	TileSize int `json:"tile_size" example:"128"`
	// Last time this ensemble served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Estimated resident memory in MB (from weight file sizes).
	// example: 96
	EstMemMB int `json:"est_mem_mb" example:"96"`
	// Current queue length for incoming predictions.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of in-flight predictions.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued predictions before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loaded ensembles.
	Instances []InstanceStatus `json:"instances"`
	// Memory budget in MB across all ensembles.
	// example: 4096
	BudgetMB int `json:"budget_mb" example:"4096"`
	// Estimated used memory in MB.
	// example: 96
	UsedMB int `json:"used_est_mb" example:"96"`
	// Reserved memory margin in MB.
	// example: 256
	MarginMB int `json:"margin_mb" example:"256"`
	// Optional top-level error message.
	Error string `json:"error,omitempty"`
	// Overall service state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of evictions performed to stay inside the budget.
	// example: 2
	EvictionsTotal uint64 `json:"evictions_total" example:"2"`
	// Total number of ensemble loads.
	// example: 5
	LoadsTotal uint64 `json:"loads_total" example:"5"`
	// Number of ensembles currently loading.
	// example: 0
	WarmupsInProgress int `json:"warmups_in_progress" example:"0"`
	// Number of ensembles currently draining.
	// example: 0
	DrainingCount int `json:"draining_count" example:"0"`
}
