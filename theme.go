package schematic

// Theme holds the flat colors shared by the render passes. Per-instance
// symbol colors come from the snapshot; everything else is themed here.
type Theme struct {
	Background Color
	Grid       Color

	Wire         Color
	SelectedWire Color

	Symbol         Color
	SelectedSymbol Color

	Text         Color
	SelectedText Color

	AnchorInput         Color
	AnchorOutput        Color
	AnchorBidirectional Color

	SelectionBox Color
}

// SymbolColor resolves a symbol's selection state to its theme color.
// Symbol color travels per instance in the snapshot, so this is applied by
// the snapshot builder rather than a shader uniform.
func (t Theme) SymbolColor(selected bool) Color {
	if selected {
		return t.SelectedSymbol
	}
	return t.Symbol
}

// AnchorColor resolves an anchor kind to its theme color. Unrecognized
// kinds fall back to the input color, mirroring the shader switch.
func (t Theme) AnchorColor(k AnchorKind) Color {
	switch k {
	case AnchorOutput:
		return t.AnchorOutput
	case AnchorBidirectional:
		return t.AnchorBidirectional
	default:
		return t.AnchorInput
	}
}

// DarkTheme returns the default dark color scheme.
func DarkTheme() Theme {
	return Theme{
		Background:          Color{0.12, 0.12, 0.12, 1},
		Grid:                Color{0.35, 0.35, 0.35, 1},
		Wire:                Color{0.0, 0.0, 1.0, 1},
		SelectedWire:        Color{0.3, 0.3, 1.0, 1},
		Symbol:              Color{0.85, 0.85, 0.85, 1},
		SelectedSymbol:      Color{0.3, 0.6, 1.0, 1},
		Text:                Color{0.85, 0.85, 0.85, 1},
		SelectedText:        Color{0.3, 0.6, 1.0, 1},
		AnchorInput:         Color{0.0, 1.0, 0.0, 1},
		AnchorOutput:        Color{1.0, 0.0, 0.0, 1},
		AnchorBidirectional: Color{1.0, 1.0, 0.0, 1},
		SelectionBox:        Color{0.3, 0.6, 1.0, 1},
	}
}

// LightTheme returns the default light color scheme.
func LightTheme() Theme {
	return Theme{
		Background:          Color{0.98, 0.98, 0.98, 1},
		Grid:                Color{0.70, 0.70, 0.70, 1},
		Wire:                Color{0.0, 0.0, 0.8, 1},
		SelectedWire:        Color{0.25, 0.25, 1.0, 1},
		Symbol:              Color{0.15, 0.15, 0.15, 1},
		SelectedSymbol:      Color{0.1, 0.4, 0.9, 1},
		Text:                Color{0.15, 0.15, 0.15, 1},
		SelectedText:        Color{0.1, 0.4, 0.9, 1},
		AnchorInput:         Color{0.0, 0.6, 0.0, 1},
		AnchorOutput:        Color{0.8, 0.0, 0.0, 1},
		AnchorBidirectional: Color{0.7, 0.7, 0.0, 1},
		SelectionBox:        Color{0.1, 0.4, 0.9, 1},
	}
}
