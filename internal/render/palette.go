package render

import (
	"unsafe"

	"voxstream/internal/volume"

	"github.com/go-gl/mathgl/mgl32"
)

// PaletteBuffer names the block color table handed to UploadFunc.
const PaletteBuffer = "palette"

// Palette returns the RGBA color of every registered block type, indexed by
// block type.
func Palette() []mgl32.Vec4 {
	colors := make([]mgl32.Vec4, volume.BlockCount())
	for i := range colors {
		colors[i] = volume.ColorOf(volume.BlockType(i))
	}
	return colors
}

func paletteBytes(colors []mgl32.Vec4) []byte {
	if len(colors) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&colors[0])), len(colors)*int(unsafe.Sizeof(colors[0])))
}
