package ui

import (
	"strconv"

	"github.com/pterm/pterm"
)

func Green(a any) string {
	return pterm.Green(a)
}

func Yellow(a any) string {
	return pterm.Yellow(a)
}

func Red(a any) string {
	return pterm.Red(a)
}

func Gray(a any) string {
	return pterm.Gray(a)
}

// Hex renders a in the colour given as a #RRGGBB code, or plainly when the
// code is malformed.
func Hex(hex string, a any) string {
	if len(hex) != 7 || hex[0] != '#' {
		return pterm.Sprint(a)
	}

	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return pterm.Sprint(a)
	}

	return pterm.NewRGB(uint8(v>>16), uint8(v>>8), uint8(v)).Sprint(a)
}
