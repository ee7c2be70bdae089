// Package colors does hex color math for the TUI: perceptual gradients in
// LCH space, blending, and a couple of small display helpers.
package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func GenerateGradient(startHex string, endHex string, steps int) []string {
	if steps < 2 {
		steps = 2
	}

	sr, sg, sb := HexToRGB(startHex)
	er, eg, eb := HexToRGB(endHex)

	// convert to lch for perceptually uniform color interpolation
	sl, sc, sh := rgbToLCH(sr, sg, sb)
	el, ec, eh := rgbToLCH(er, eg, eb)

	// find shortest hue path (avoid going around the color wheel the long way)
	hueDiff := eh - sh
	if hueDiff > 180 {
		hueDiff -= 360
	} else if hueDiff < -180 {
		hueDiff += 360
	}

	chromaDiff := math.Abs(ec - sc)
	lightnessDiff := math.Abs(el - sl)
	hueDistance := math.Abs(hueDiff)

	// very different endpoints get eased interpolation to soften the extremes
	needsSmoothing := chromaDiff > 30 || hueDistance > 60 || lightnessDiff > 30

	gradient := make([]string, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)

		tInterp := t
		if needsSmoothing {
			tInterp = smoothStep(smoothStep(t))
		}

		l := sl + tInterp*(el-sl)
		c := sc + tInterp*(ec-sc)
		h := sh + tInterp*hueDiff
		if h < 0 {
			h += 360
		} else if h >= 360 {
			h -= 360
		}

		r, g, b := lchToRGB(l, c, h)
		gradient[i] = fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}

	return gradient
}

// CalculateGradientSmoothness evaluates how smooth a gradient between two colors would be.
// returns the maximum perceptual color jump that would occur in the gradient.
// lower values indicate smoother gradients (ideal: < 35, acceptable: < 50, problematic: > 50)
func CalculateGradientSmoothness(startHex string, endHex string, steps int) float64 {
	if steps < 2 {
		steps = 2
	}

	gradient := GenerateGradient(startHex, endHex, steps)
	maxJump := 0.0

	for i := 1; i < len(gradient); i++ {
		r1, g1, b1 := HexToRGB(gradient[i-1])
		r2, g2, b2 := HexToRGB(gradient[i])

		// perceptual distance using the redmean approximation
		rmean := (r1 + r2) / 2
		dr := r1 - r2
		dg := g1 - g2
		db := b1 - b2

		distance := math.Sqrt(
			float64((2+rmean/256)*dr*dr + 4*dg*dg + (2+(255-rmean)/256)*db*db),
		)

		if distance > maxJump {
			maxJump = distance
		}
	}

	return maxJump
}

// GetLightness returns the perceived lightness of a color (0-100 scale)
func GetLightness(hexColor string) float64 {
	r, g, b := HexToRGB(hexColor)
	l, _, _ := rgbToLCH(r, g, b)
	return l
}

func BlendColors(hex1 string, hex2 string, t float64) string {
	r1, g1, b1 := HexToRGB(hex1)
	r2, g2, b2 := HexToRGB(hex2)

	l1, c1, h1 := rgbToLCH(r1, g1, b1)
	l2, c2, h2 := rgbToLCH(r2, g2, b2)

	hueDiff := h2 - h1
	if hueDiff > 180 {
		hueDiff -= 360
	} else if hueDiff < -180 {
		hueDiff += 360
	}

	l := l1 + t*(l2-l1)
	c := c1 + t*(c2-c1)
	h := h1 + t*hueDiff
	if h < 0 {
		h += 360
	} else if h >= 360 {
		h -= 360
	}

	r, g, b := lchToRGB(l, c, h)
	return RGBToHex(r, g, b)
}

func RGBToHex(r int, g int, b int) string {
	r = clampInt(r, 0, 255)
	g = clampInt(g, 0, 255)
	b = clampInt(b, 0, 255)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func clampInt(val int, min int, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func AdjustBrightness(hex string, factor float64) string {
	r, g, b := HexToRGB(hex)
	r = clampInt(int(float64(r)*factor), 0, 255)
	g = clampInt(int(float64(g)*factor), 0, 255)
	b = clampInt(int(float64(b)*factor), 0, 255)
	return RGBToHex(r, g, b)
}

// smoothStep applies ease-in-ease-out smoothing: 3t^2 - 2t^3
func smoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func rgbToLCH(r int, g int, b int) (float64, float64, float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	// gamma correction
	if rf > 0.04045 {
		rf = math.Pow((rf+0.055)/1.055, 2.4)
	} else {
		rf = rf / 12.92
	}
	if gf > 0.04045 {
		gf = math.Pow((gf+0.055)/1.055, 2.4)
	} else {
		gf = gf / 12.92
	}
	if bf > 0.04045 {
		bf = math.Pow((bf+0.055)/1.055, 2.4)
	} else {
		bf = bf / 12.92
	}

	// to xyz (d65 illuminant)
	x := rf*0.4124564 + gf*0.3575761 + bf*0.1804375
	y := rf*0.2126729 + gf*0.7151522 + bf*0.0721750
	z := rf*0.0193339 + gf*0.1191920 + bf*0.9503041

	x = x / 0.95047
	y = y / 1.00000
	z = z / 1.08883

	labFunc := func(t float64) float64 {
		if t > 0.008856 {
			return math.Pow(t, 1.0/3.0)
		}
		return (7.787 * t) + (16.0 / 116.0)
	}

	x = labFunc(x)
	y = labFunc(y)
	z = labFunc(z)

	l := (116.0 * y) - 16.0
	labA := 500.0 * (x - y)
	labB := 200.0 * (y - z)

	c := math.Sqrt(labA*labA + labB*labB)
	h := math.Atan2(labB, labA) * 180.0 / math.Pi
	if h < 0 {
		h += 360
	}

	return l, c, h
}

func lchToRGB(l float64, c float64, h float64) (int, int, int) {
	hRad := h * math.Pi / 180.0
	labA := c * math.Cos(hRad)
	labB := c * math.Sin(hRad)

	y := (l + 16.0) / 116.0
	x := labA/500.0 + y
	z := y - labB/200.0

	labInvFunc := func(t float64) float64 {
		t3 := t * t * t
		if t3 > 0.008856 {
			return t3
		}
		return (t - 16.0/116.0) / 7.787
	}

	x = labInvFunc(x) * 0.95047
	y = labInvFunc(y) * 1.00000
	z = labInvFunc(z) * 1.08883

	rLin := x*3.2404542 + y*-1.5371385 + z*-0.4985314
	gLin := x*-0.9692660 + y*1.8760108 + z*0.0415560
	bLin := x*0.0556434 + y*-0.2040259 + z*1.0572252

	gammaInv := func(t float64) float64 {
		if t > 0.0031308 {
			return 1.055*math.Pow(t, 1.0/2.4) - 0.055
		}
		return 12.92 * t
	}

	rLin = gammaInv(rLin)
	gLin = gammaInv(gLin)
	bLin = gammaInv(bLin)

	ri := clampInt(int(rLin*255.0+0.5), 0, 255)
	gi := clampInt(int(gLin*255.0+0.5), 0, 255)
	bi := clampInt(int(bLin*255.0+0.5), 0, 255)

	return ri, gi, bi
}

func HexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 255, 255, 255
	}

	r, err := strconv.ParseInt(hex[0:2], 16, 64)
	if err != nil {
		r = 255
	}
	g, err := strconv.ParseInt(hex[2:4], 16, 64)
	if err != nil {
		g = 255
	}
	b, err := strconv.ParseInt(hex[4:6], 16, 64)
	if err != nil {
		b = 255
	}

	return int(r), int(g), int(b)
}

func RenderGradientText(text string, gradient []string, bold bool) string {
	if len(text) == 0 {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var result strings.Builder

	for i, r := range runes {
		colorIdx := 0
		if len(runes) > 1 {
			colorIdx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		if colorIdx >= len(gradient) {
			colorIdx = len(gradient) - 1
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[colorIdx]))
		if bold {
			style = style.Bold(true)
		}
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

func FormatTime(seconds int64) string {
	if seconds < 0 {
		return "0:00"
	}
	minutes := seconds / 60
	remaining := seconds % 60
	return fmt.Sprintf("%d:%02d", minutes, remaining)
}
