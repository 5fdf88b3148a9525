package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	anim "github.com/milk9111/animevents/component"
	"github.com/milk9111/animevents/prefabs"
)

func main() {
	prefabName := flag.String("prefab", "knight.yaml", "character prefab to show")
	prefabDir := flag.String("prefab-dir", "prefabs", "directory overriding the embedded prefabs; watched for changes")
	quiet := flag.Bool("q", false, "silence animation event logging")
	flag.Parse()

	prefabs.SetDiskDir(*prefabDir)
	if *quiet {
		anim.SetLogger(nil)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("animevents viewer")

	game, err := NewGame(*prefabName)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if *prefabDir != "" {
		if err := game.Watch(*prefabDir); err != nil {
			log.Printf("viewer: hot reload disabled: %v", err)
		}
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
