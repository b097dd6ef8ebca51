// Command prefab is the local CLI for fabrication-outcome prediction:
// list available ensemble weights, run predictions on layout images, and
// export results to GDSII.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
