package types

import "fmt"

// Descriptor identifies a trained model family in the model store.
// Ensemble members share a descriptor and differ only by member number.
type Descriptor struct {
	// Single-character role tag: "p" (predictor) or "c" (corrector).
	// example: p
	Kind string `json:"kind" example:"p"`
	// Fabrication facility the models were trained for.
	// example: Ante
	Fab string `json:"fab" example:"Ante"`
	// Process name within the facility.
	// example: NanoSOI
	Process string `json:"process" example:"NanoSOI"`
	// Dataset/model version string.
	// example: v5-d4
	Version string `json:"version" example:"v5-d4"`
}

// ID returns the store identifier for the descriptor, e.g. "p_Ante_NanoSOI_v5-d4".
func (d Descriptor) ID() string {
	return fmt.Sprintf("%s_%s_%s_%s", d.Kind, d.Fab, d.Process, d.Version)
}

// Model is one trained ensemble member discovered in the model store.
type Model struct {
	// Identifier shared by all members of the ensemble.
	// example: p_Ante_NanoSOI_v5-d4
	ID string `json:"id" example:"p_Ante_NanoSOI_v5-d4"`
	Descriptor
	// Member number within the ensemble.
	// example: 0
	Num int `json:"num" example:"0"`
	// Absolute path to the weight file on disk.
	// example: /home/user/models/prefab/p_Ante_NanoSOI_v5-d4_0.onnx
	Path string `json:"path" example:"/home/user/models/prefab/p_Ante_NanoSOI_v5-d4_0.onnx"`
}
