// Package surface implements the .srf binary surface format: fixed-size
// grids of colored character cells that presentation decks are compiled
// into, plus the text-to-surface converter.
package surface
