// Package leveldata turns Tiled TMX maps into static collision geometry for
// either physics backend. Only collision data is read; rendering layers are
// someone else's problem.
package leveldata

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/lafriks/go-tiled"
)

// WorldBuilder receives the parsed geometry. Both backend worlds satisfy
// it.
type WorldBuilder interface {
	AddSolidRect(x, y, width, height float64)
	AddRamp(x, y, width, height float64, upRight bool)
}

// SpawnPoint is a named character spawn from the map's object layer.
type SpawnPoint struct {
	X, Y  float64
	Index int
}

// Level is the collision-relevant summary of one TMX map.
type Level struct {
	Width, Height float64
	Spawns        []SpawnPoint
}

const (
	collisionLayer = "collision"
	spawnGroup     = "spawns"

	slopeUpRight = "up-right"
	slopeUpLeft  = "up-left"
)

// Load parses the TMX at tmxPath inside fsys and feeds every solid tile and
// ramp into builder. Tiles with a "slope" property of "up-right" or
// "up-left" become ramps; everything else on the collision layer is solid.
func Load(fsys fs.FS, tmxPath string, builder WorldBuilder) (*Level, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	level := &Level{
		Width:  float64(levelMap.Width * levelMap.TileWidth),
		Height: float64(levelMap.Height * levelMap.TileHeight),
	}

	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	for _, layer := range levelMap.Layers {
		if layer.Name != collisionLayer {
			continue
		}
		for y := 0; y < levelMap.Height; y++ {
			for x := 0; x < levelMap.Width; x++ {
				tile := layer.Tiles[y*levelMap.Width+x]
				if tile.IsNil() {
					continue
				}

				var slope string
				if tilesetTile, err := tile.Tileset.GetTilesetTile(tile.ID); err == nil {
					slope = tilesetTile.Properties.GetString("slope")
				}

				worldX := float64(x) * tileW
				worldY := float64(y) * tileH
				switch slope {
				case slopeUpRight:
					builder.AddRamp(worldX, worldY, tileW, tileH, true)
				case slopeUpLeft:
					builder.AddRamp(worldX, worldY, tileW, tileH, false)
				default:
					builder.AddSolidRect(worldX, worldY, tileW, tileH)
				}
			}
		}
		break
	}

	for _, og := range levelMap.ObjectGroups {
		if og.Name != spawnGroup {
			continue
		}
		for _, o := range og.Objects {
			level.Spawns = append(level.Spawns, SpawnPoint{
				X:     o.X,
				Y:     o.Y,
				Index: o.Properties.GetInt("spawnIndex"),
			})
		}
	}

	// Left-to-right keeps spawn assignment deterministic.
	sort.Slice(level.Spawns, func(i, j int) bool {
		return level.Spawns[i].X < level.Spawns[j].X
	})

	return level, nil
}
