package viz

import "math"

// drawPlant renders a schematic of the plant for the measured state x with
// the target marked by a dashed line.
func drawPlant(c *Canvas, plant string, x []float64, target float64) {
	c.Clear()
	if len(x) == 0 {
		return
	}
	switch plant {
	case "thermal":
		drawThermal(c, x[0], target)
	case "spring_mass":
		drawSpringMass(c, x[0], target)
	case "pendulum":
		drawPendulum(c, x[0], target)
	default:
		drawLevel(c, x[0], target)
	}
}

// drawThermal is a thermometer scaled so the target sits at two thirds of
// the column.
func drawThermal(c *Canvas, temp, target float64) {
	w, h := c.Size()
	left, right := w/2-4, w/2+4
	top, bottom := 2, h-6

	c.Line(left, top, left, bottom)
	c.Line(right, top, right, bottom)
	c.Line(left, top, right, top)
	c.Fill(left-3, bottom, right+3, h-1)

	span := 1.5 * math.Abs(target)
	if span == 0 {
		span = 1
	}
	level := func(v float64) int {
		frac := min(max(v/span, 0), 1)
		return bottom - int(frac*float64(bottom-top))
	}
	if !math.IsNaN(temp) {
		c.Fill(left+1, level(temp), right-1, bottom)
	}
	c.Dashed(left-10, level(target), right+10, level(target))
}

func drawSpringMass(c *Canvas, pos, target float64) {
	w, h := c.Size()
	cy := h / 2
	wall, rest := 4, w/3
	scale := float64(w-rest-12) / 2

	c.Line(wall, cy-12, wall, cy+12)
	c.Line(0, cy+8, w-1, cy+8)

	massX := rest + int(clampFinite(pos, -2, 2)*scale)
	const coils = 8
	prevX, prevY := wall, cy
	step := float64(massX-5-wall) / coils
	for i := 1; i <= coils; i++ {
		x := wall + int(float64(i)*step)
		y := cy - 4
		if i%2 == 0 {
			y = cy + 4
		}
		if i == coils {
			y = cy
		}
		c.Line(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	c.Fill(massX-5, cy-5, massX+5, cy+7)

	tx := rest + int(clampFinite(target, -2, 2)*scale)
	c.Dashed(tx, 0, tx, h-1)
}

// drawPendulum draws the rod from a pivot near the top; theta = 0 hangs
// straight down.
func drawPendulum(c *Canvas, theta, target float64) {
	w, h := c.Size()
	cx, cy := w/2, 6
	length := float64(h) * 0.7

	end := func(angle float64) (int, int) {
		return cx + int(length*math.Sin(angle)), cy + int(length*math.Cos(angle))
	}

	tx, ty := end(target)
	c.Set(tx, ty)
	c.Set(tx+1, ty)
	c.Set(tx, ty+1)
	c.Set(tx+1, ty+1)

	c.Line(cx-6, cy, cx+6, cy)
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return
	}
	bx, by := end(theta)
	c.Line(cx, cy, bx, by)
	c.Fill(bx-2, by-2, bx+2, by+2)
}

// drawLevel is a single bar for plants without a dedicated schematic.
func drawLevel(c *Canvas, v, target float64) {
	w, h := c.Size()
	mid := h / 2
	scale := float64(h/2-2) / math.Max(math.Abs(target), 1)
	top := mid - int(clampFinite(v*scale, -float64(mid), float64(mid)))
	c.Fill(w/2-6, top, w/2+6, mid)
	ty := mid - int(target*scale)
	c.Dashed(0, ty, w-1, ty)
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, lo), hi)
}
