// Shade - skin tone analysis and cosmetic shade matching
//
// Shade measures skin tone in a face photo and matches it against a
// catalog of foundation, concealer, lipstick, blush and bronzer shades.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import "github.com/jmylchreest/shade/internal/cli"

func main() {
	cli.Execute()
}
