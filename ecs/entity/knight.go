package entity

import (
	"fmt"

	"github.com/milk9111/animevents/ecs"
)

const knightPrefab = "knight.yaml"

func NewKnight(w *ecs.World) (ecs.Entity, error) {
	return BuildCharacter(w, knightPrefab)
}

func NewKnightAt(w *ecs.World, x, y float64) (ecs.Entity, error) {
	entity, err := BuildCharacter(w, knightPrefab)
	if err != nil {
		return 0, err
	}
	if err := SetEntityTransform(w, entity, x, y, 0); err != nil {
		return 0, fmt.Errorf("knight: override transform: %w", err)
	}
	return entity, nil
}
