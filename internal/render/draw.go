package render

import (
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/park285/cheese-checkers-bot/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	backgroundColor     = color.RGBA{R: 22, G: 24, B: 34, A: 255}
	lightSquare         = color.RGBA{R: 238, G: 222, B: 190, A: 255}
	darkSquare          = color.RGBA{R: 120, G: 78, B: 52, A: 255}
	hintOriginColor     = color.NRGBA{R: 0xff, G: 0xd5, B: 0x00, A: 150}
	hintMoveColor       = color.NRGBA{R: 0x7a, G: 0xff, B: 0x00, A: 170}
	hintCaptureColor    = color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 170}
	capturedMarkColor   = color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 70}
	lastMoveArrow       = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor      = color.NRGBA{A: 50}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	boardShadowColor    = color.NRGBA{A: 60}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// geometry maps board squares to pixels. Row 0 is drawn at the bottom.
type geometry struct {
	size     int
	squarePx int
	origin   image.Point
}

func (g geometry) rect(sq checkers.Square) image.Rectangle {
	x := g.origin.X + sq.Col*g.squarePx
	y := g.origin.Y + (g.size-1-sq.Row)*g.squarePx
	return image.Rect(x, y, x+g.squarePx, y+g.squarePx)
}

func (g geometry) center(sq checkers.Square) image.Point {
	r := g.rect(sq)
	return image.Point{X: r.Min.X + g.squarePx/2, Y: r.Min.Y + g.squarePx/2}
}

func fillBackground(img *image.RGBA) {
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)
}

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(
		boardRect.Min.X+4,
		boardRect.Min.Y+8,
		boardRect.Max.X+10,
		boardRect.Max.Y+12,
	)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, g geometry) {
	for row := 0; row < g.size; row++ {
		for col := 0; col < g.size; col++ {
			sq := checkers.Square{Row: row, Col: col}
			imagedraw.Draw(dst, g.rect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

// squareColor paints the playable squares dark; A1 is playable.
func squareColor(sq checkers.Square) color.Color {
	if (sq.Row+sq.Col)%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func drawPieces(dst imagedraw.Image, g geometry, snap checkers.Snapshot) error {
	for sq, piece := range snap.Pieces {
		img, err := renderPieceImage(piece, g.squarePx)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, g.rect(sq), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawHints shades the origin, marks every destination with a dot (red when it
// captures) and tints the squares that would be jumped.
func drawHints(img *image.RGBA, g geometry, origin checkers.Square, moves checkers.MoveSet) {
	drawSquareOverlay(img, g.rect(origin), hintOriginColor)
	radius := g.squarePx / 5
	for _, mv := range moves.Sorted() {
		clr := hintMoveColor
		if mv.Capture {
			clr = hintCaptureColor
			drawSquareOverlay(img, g.rect(mv.Captured), capturedMarkColor)
		}
		drawDisc(img, g.center(mv.To), radius, clr)
	}
}

func drawSquareOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

type hudLayout struct {
	panelHeight int
	radius      int
	paddingX    int
	gapToBoard  int
	shadowY     int
}

// drawHUD puts the title on the left, the piece score on the right and the turn
// text centered under them.
func drawHUD(img *image.RGBA, opts Options, counts checkers.Counts, boardRect image.Rectangle, l hudLayout) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Checkers"
	}
	scoreText := formatScore(counts)
	turnText := strings.TrimSpace(opts.HUDTurn)

	bottom := boardRect.Min.Y - l.gapToBoard
	top := bottom - l.panelHeight

	scoreWidth := drawer.MeasureString(scoreText).Round() + l.paddingX*2
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, top, boardRect.Max.X, bottom)

	titleWidth := drawer.MeasureString(title).Round() + l.paddingX*2
	if maxWidth := boardRect.Dx()/2 - 8; titleWidth > maxWidth {
		titleWidth = maxWidth
	}
	titleRect := image.Rect(boardRect.Min.X, top, boardRect.Min.X+titleWidth, bottom)
	title = truncateWithEllipsis(face, title, titleRect.Dx()-l.paddingX*2)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, l.shadowY)), l.radius, hudShadowColor)
	drawRoundedPanel(img, scoreRect.Add(image.Pt(0, l.shadowY)), l.radius, hudShadowColor)
	drawRoundedPanel(img, titleRect, l.radius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, l.radius, hudPanelColor)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)

	if turnText == "" {
		return
	}
	freeLeft, freeRight := titleRect.Max.X+8, scoreRect.Min.X-8
	turnWidth := drawer.MeasureString(turnText).Round() + l.paddingX*2
	if turnWidth > freeRight-freeLeft {
		turnWidth = freeRight - freeLeft
	}
	if turnWidth <= l.paddingX*2 {
		return
	}
	left := freeLeft + (freeRight-freeLeft-turnWidth)/2
	turnRect := image.Rect(left, top, left+turnWidth, bottom)
	turnText = truncateWithEllipsis(face, turnText, turnRect.Dx()-l.paddingX*2)
	drawRoundedPanel(img, turnRect, l.radius, hudTurnPanelColor)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func formatScore(c checkers.Counts) string {
	return fmt.Sprintf("W %d : %d B", c.White, c.Black)
}

// drawCoordinates writes column letters under the board and row numbers to its left.
func drawCoordinates(dst imagedraw.Image, g geometry, margin int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardBottom := g.origin.Y + g.size*g.squarePx

	for i := 0; i < g.size; i++ {
		center := g.center(checkers.Square{Row: i, Col: i})
		drawCenteredText(drawer, strconv.Itoa(i+1), g.origin.X-margin/2, center.Y+ascent/2)
		drawCenteredText(drawer, string(rune('A'+i)), center.X, boardBottom+ascent+(margin-ascent)/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}
	// Middle band, then the side bands, then the four corner discs.
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c, radius, clr, rect)
	}
}

// drawQuarterDisc fills the part of a disc that lies outside the bands already
// painted, so translucent panels are not blended twice.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, rect image.Rectangle) {
	inner := image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y).
		Union(image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius))
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			p := image.Point{X: center.X + x, Y: center.Y + y}
			if x*x+y*y > r2 || p.In(inner) || !p.In(rect) {
				continue
			}
			blendPixel(img, p.X, p.Y, clr)
		}
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > r2 {
				continue
			}
			blendPixel(img, center.X+x, center.Y+y, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 0xffff - sa
	// Premultiplied "over": out = src + dst*(1-srcA).
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/0xffff) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/0xffff) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/0xffff) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/0xffff) >> 8),
	})
}

type pointF struct {
	X float64
	Y float64
}

// drawArrow draws a shaft and head from the center of one square to another.
func drawArrow(img *image.RGBA, g geometry, from, to checkers.Square, clr color.Color) {
	if from == to {
		return
	}
	start, end := g.center(from), g.center(to)
	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	sq := float64(g.squarePx)
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - sq*0.45
	if baseLength < sq*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := sq * 0.12
	headWidth := sq * 0.32

	baseX := float64(start.X) + dirX*baseLength
	baseY := float64(start.Y) + dirY*baseLength

	fillQuad(img,
		pointF{X: float64(start.X) - perpX*halfWidth, Y: float64(start.Y) - perpY*halfWidth},
		pointF{X: float64(start.X) + perpX*halfWidth, Y: float64(start.Y) + perpY*halfWidth},
		pointF{X: baseX + perpX*halfWidth, Y: baseY + perpY*halfWidth},
		pointF{X: baseX - perpX*halfWidth, Y: baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{X: float64(end.X), Y: float64(end.Y)},
		pointF{X: baseX - perpX*headWidth/2, Y: baseY - perpY*headWidth/2},
		pointF{X: baseX + perpX*headWidth/2, Y: baseY + perpY*headWidth/2},
		clr,
	)
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	gamma := 1 - alpha - beta
	return alpha >= 0 && beta >= 0 && gamma >= 0
}
