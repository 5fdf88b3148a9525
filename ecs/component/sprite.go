package component

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is the frame an entity currently shows. The animation system sets
// Image to the playing frame and Source to its rectangle on the sheet.
type Sprite struct {
	Image   *ebiten.Image
	Source  image.Rectangle
	OriginX float64
	OriginY float64
}

var SpriteComponent = NewComponent[Sprite]()
