package model

import "time"

// ShelfBlock is a block that has been chosen for a movie but not yet placed
// on the grid.  Shelf order is insertion order.
//
// Fields:
//  ID        – unique identifier assigned when the block is created.
//  Movie     – the movie shown by the block.
//  Variant   – shape of the block.
//  BlockSize – footprint of Variant, persisted alongside it.
//  CreatedAt – when the block was put on the shelf.
type ShelfBlock struct {
    ID        string       `json:"id"`
    Movie     MovieRef     `json:"movie"`
    Variant   BlockVariant `json:"variant"`
    BlockSize Footprint    `json:"blockSize"`
    CreatedAt time.Time    `json:"createdAt"`
}

// GridBlock is a block placed on the board.  Position is the row-major index
// of its top-left cell.  A move never edits Position; the block is replaced
// by a new record with a new ID.
type GridBlock struct {
    ID        string       `json:"id"`
    Movie     MovieRef     `json:"movie"`
    Variant   BlockVariant `json:"variant"`
    Position  int          `json:"position"`
    CreatedAt time.Time    `json:"createdAt"`
}
