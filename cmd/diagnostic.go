// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/luthersystems/nlint/diagnostic"
	"github.com/spf13/viper"
)

func colorMode() diagnostic.ColorMode {
	switch viper.GetString("color") {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}
