package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-azul/internal/azul"
)

// tileStyles maps tile types to lipgloss styles.
var tileStyles = map[azul.TileType]lipgloss.Style{
	azul.TileStartingMarker: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("255")).Bold(true),
	azul.TileBlue:           lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")),
	azul.TileYellow:         lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
	azul.TileRed:            lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")),
	azul.TileBlack:          lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236")),
	azul.TileTurquoise:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("37")),
}

// wallHintStyles color the letters of empty wall cells.
var wallHintStyles = map[azul.TileType]lipgloss.Style{
	azul.TileBlue:      lipgloss.NewStyle().Foreground(lipgloss.Color("27")).Faint(true),
	azul.TileYellow:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Faint(true),
	azul.TileRed:       lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Faint(true),
	azul.TileBlack:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true),
	azul.TileTurquoise: lipgloss.NewStyle().Foreground(lipgloss.Color("37")).Faint(true),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	penaltyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Faint(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	activeBoxStyle = boxStyle.BorderForeground(lipgloss.Color("229"))
)

const emptySlot = "·"

// tileLetter is the one-letter label of a tile type.
func tileLetter(t azul.TileType) string {
	if t == azul.TileStartingMarker {
		return "1"
	}
	return strings.ToUpper(t.String()[:1])
}

// renderTile draws a single tile, two cells wide.
func renderTile(t azul.TileType) string {
	style, ok := tileStyles[t]
	if !ok {
		return "??"
	}
	return style.Render(tileLetter(t) + " ")
}

// renderTiles draws tiles grouped by type in wall order, marker first.
func renderTiles(tiles []azul.TileType, highlight azul.TileType, hasHighlight bool) string {
	sorted := append([]azul.TileType(nil), tiles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		tile := renderTile(t)
		if hasHighlight && t == highlight {
			tile = lipgloss.NewStyle().Underline(true).Render(tile)
		}
		parts = append(parts, tile)
	}
	return strings.Join(parts, "")
}

// renderSource draws a display or the center as a bordered box.
func renderSource(src azul.SourceSnapshot, label string, selected bool, color azul.TileType) string {
	content := renderTiles(src.Tiles, color, selected)
	if len(src.Tiles) == 0 {
		content = dimStyle.Render("empty")
	}
	header := dimStyle.Render(label)
	if selected {
		header = selectedStyle.Render(label)
	}

	style := boxStyle
	if selected {
		style = activeBoxStyle
	}
	if !src.IsCenter {
		// four tiles plus room for the label
		style = style.Width(10)
	}
	return style.Render(header + "\n" + content)
}

// renderFactory lays out the displays in a row and the center below them.
func renderFactory(snap azul.Snapshot, selected azul.SourceSnapshot, color azul.TileType, selecting bool, width int) string {
	displays := make([]string, 0, len(snap.Displays))
	for i, d := range snap.Displays {
		sel := selecting && d.ID == selected.ID
		displays = append(displays, renderSource(d, fmt.Sprintf("#%d", i+1), sel, color))
	}

	rows := wrapHorizontal(displays, width)
	center := renderSource(snap.Center, "center", selecting && snap.Center.ID == selected.ID, color)
	return lipgloss.JoinVertical(lipgloss.Left, rows, center)
}

// boardCursor tells renderBoard which pattern line is under the cursor.
// line is the pattern line index, azul.FloorLineIndex or -2 for none.
type boardCursor struct {
	line  int
	color azul.TileType
}

var noCursor = boardCursor{line: -2}

// renderBoard draws a player's pattern lines, wall, floor line and score.
func renderBoard(p azul.PlayerSnapshot, active, toPlay bool, cursor boardCursor) string {
	var b strings.Builder

	name := p.Name
	if p.Kind == azul.PlayerComputer.String() {
		name += dimStyle.Render(" (bot)")
	}
	if toPlay {
		name = selectedStyle.Render("> ") + name
	}
	fmt.Fprintf(&b, "%s  %s\n", name, titleStyle.Render(fmt.Sprintf("%d pts", p.Board.Score)))

	for i, line := range p.Board.PatternLines {
		marker := "  "
		if cursor.line == i {
			marker = selectedStyle.Render("▶ ")
		}
		b.WriteString(marker)
		b.WriteString(renderPatternLine(line))
		b.WriteString(dimStyle.Render(" │ "))
		b.WriteString(renderWallRow(p.Board.Wall[i], i))
		if cursor.line == i {
			pts := p.Board.PlacementPoints(cursor.color, i)
			b.WriteString(dimStyle.Render(fmt.Sprintf(" +%d", pts)))
		}
		b.WriteString("\n")
	}

	marker := "  "
	if cursor.line == azul.FloorLineIndex {
		marker = selectedStyle.Render("▶ ")
	}
	b.WriteString(marker)
	b.WriteString(renderFloor(p.Board.FloorLine))

	if len(p.TilesToPlace) > 0 || p.StartingTilePending {
		hand := renderTiles(p.TilesToPlace, 0, false)
		if p.StartingTilePending {
			hand = renderTile(azul.TileStartingMarker) + hand
		}
		b.WriteString("\n  holding " + hand)
	} else if p.HasStartingTile {
		b.WriteString("\n  " + dimStyle.Render("starts next round"))
	}

	style := boxStyle
	if active {
		style = activeBoxStyle
	}
	return style.Render(b.String())
}

// renderPatternLine draws a pattern line right-aligned against the wall.
func renderPatternLine(line azul.PatternLineSnapshot) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", azul.WallSize-line.Length))
	for slot := line.Length - 1; slot >= 0; slot-- {
		if slot < line.Count {
			b.WriteString(renderTile(line.Color))
		} else {
			b.WriteString(dimStyle.Render(emptySlot + " "))
		}
	}
	return b.String()
}

// renderWallRow draws one wall row; empty cells show the color they accept.
func renderWallRow(row [azul.WallSize]bool, r int) string {
	var b strings.Builder
	for col, filled := range row {
		color := azul.WallColor(r, col)
		if filled {
			b.WriteString(renderTile(color))
			continue
		}
		b.WriteString(wallHintStyles[color].Render(strings.ToLower(tileLetter(color)) + " "))
	}
	return b.String()
}

// renderFloor draws the floor line with the penalty of each free slot.
func renderFloor(floor []azul.TileType) string {
	var b strings.Builder
	for i := range azul.FloorLineSize {
		if i < len(floor) {
			b.WriteString(renderTile(floor[i]))
			continue
		}
		b.WriteString(penaltyStyle.Render(fmt.Sprintf("%-2d", azul.FloorPenalties[i])))
	}
	penalty := 0
	for i := 0; i < len(floor) && i < azul.FloorLineSize; i++ {
		penalty += azul.FloorPenalties[i]
	}
	if penalty != 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf(" %d", penalty)))
	}
	return b.String()
}

// wrapHorizontal joins blocks side by side, starting a new row whenever the
// next block would not fit into width.
func wrapHorizontal(blocks []string, width int) string {
	if width <= 0 {
		width = 80
	}
	var rows []string
	var current []string
	used := 0
	for _, block := range blocks {
		w := lipgloss.Width(block)
		if len(current) > 0 && used+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
			used = 0
		}
		current = append(current, block)
		used += w
	}
	if len(current) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text
}
