// Prism derives a complete UI colour palette from a single image.
//
// It extracts a representative anchor colour from the image and builds a
// harmonised set of named colour roles from it under a named mood.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import "github.com/jmylchreest/prism/internal/cli"

func main() {
	cli.Execute()
}
