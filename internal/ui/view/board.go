package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/ui/common"
)

// RenderBoard draws a grid with row letters and column numbers. Cells in
// highlight are drawn with the cursor style on top of their content.
func RenderBoard(title string, cells [][]board.CellState, highlight board.PositionSet) string {
	var sb strings.Builder
	size := len(cells)

	sb.WriteString("   ")
	for c := range size {
		sb.WriteString(common.LabelStyle.Render(fmt.Sprintf("%-2d", c+1)))
	}
	sb.WriteString("\n")

	for r, row := range cells {
		sb.WriteString(common.LabelStyle.Render(fmt.Sprintf("%c  ", 'A'+r)))
		for c, state := range row {
			sb.WriteString(renderCell(state, highlight.Has(board.Pos(r, c))))
			sb.WriteString(" ")
		}
		if r < size-1 {
			sb.WriteString("\n")
		}
	}

	header := common.TitleStyle(title)
	return lipgloss.JoinVertical(lipgloss.Left, header, common.BoxStyle.Render(sb.String()))
}

func renderCell(state board.CellState, highlighted bool) string {
	var glyph string
	style := common.WaterStyle
	switch state {
	case board.CellShip:
		glyph, style = common.GlyphShip, common.ShipStyle
	case board.CellHit:
		glyph, style = common.GlyphHit, common.HitStyle
	case board.CellMiss:
		glyph, style = common.GlyphMiss, common.MissStyle
	default:
		glyph = common.GlyphWater
	}
	if highlighted {
		if state == board.CellEmpty {
			glyph = common.GlyphCursor
		}
		style = common.CursorStyle
	}
	return style.Render(glyph)
}

// Legend explains the glyphs.
func Legend() string {
	return common.InfoStyle.Render(fmt.Sprintf("%s water  %s ship  %s hit  %s miss  %s target",
		common.GlyphWater, common.GlyphShip, common.GlyphHit, common.GlyphMiss, common.GlyphCursor))
}
