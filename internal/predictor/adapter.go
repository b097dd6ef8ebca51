package predictor

// Runtime abstracts the inference backend that loads ensemble member
// weights. Concrete implementations (onnxruntime) satisfy this interface;
// tests use IdentityRuntime.
type Runtime interface {
	// Open loads the weights at path and returns a ready session.
	// defaultTile is used when the model does not declare a static
	// spatial input size.
	Open(path string, defaultTile int) (Session, error)
}

// Session is one loaded ensemble member. Run reuses internal buffers, so
// a session must not be used from more than one goroutine at a time.
type Session interface {
	// TileSize returns the native square input size in pixels.
	TileSize() int
	// Run executes one forward pass over a row-major tileSize*tileSize
	// material-fraction tile and returns the per-pixel probability map
	// of the same shape.
	Run(tile []float32) ([]float32, error)
	// Close releases resources associated with the session.
	Close() error
}
