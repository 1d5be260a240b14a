package volume

import "github.com/go-gl/mathgl/mgl32"

// BlockType identifies the material stored in a voxel. Zero is air.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeSnow
)

// BlockDefinition describes how a block type is presented.
type BlockDefinition struct {
	ID    BlockType
	Name  string
	Color uint32 // ARGB
}

var blocks = []BlockDefinition{
	{ID: BlockTypeAir, Name: "air", Color: 0x00000000},
	{ID: BlockTypeGrass, Name: "grass", Color: 0xff4dc93a},
	{ID: BlockTypeDirt, Name: "dirt", Color: 0xff2a6f96},
	{ID: BlockTypeStone, Name: "stone", Color: 0xff7a858c},
	{ID: BlockTypeSnow, Name: "snow", Color: 0xffffffff},
}

// BlockCount returns the number of registered block types, air included.
func BlockCount() int { return len(blocks) }

// Lookup returns the definition for t. Unknown types report false.
func Lookup(t BlockType) (BlockDefinition, bool) {
	if int(t) >= len(blocks) {
		return BlockDefinition{}, false
	}
	return blocks[t], true
}

func (t BlockType) String() string {
	if def, ok := Lookup(t); ok {
		return def.Name
	}
	return "unknown"
}

// ColorOf returns the block color as normalized RGBA.
func ColorOf(t BlockType) mgl32.Vec4 {
	def, _ := Lookup(t)
	c := def.Color
	return mgl32.Vec4{
		float32((c>>16)&0xff) / 255,
		float32((c>>8)&0xff) / 255,
		float32(c&0xff) / 255,
		float32((c>>24)&0xff) / 255,
	}
}
