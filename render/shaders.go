package render

import _ "embed"

// Embedded WGSL shader sources, one per pass.

//go:embed shaders/grid.wgsl
var gridShaderSource string

//go:embed shaders/wire.wgsl
var wireShaderSource string

//go:embed shaders/symbol.wgsl
var symbolShaderSource string

//go:embed shaders/shape.wgsl
var shapeShaderSource string

//go:embed shaders/anchor.wgsl
var anchorShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

//go:embed shaders/selection_box.wgsl
var selectionBoxShaderSource string
