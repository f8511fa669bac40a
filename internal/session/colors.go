package session

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"sync"
)

// Palette hands out one color per organization id, generated on first use
// and kept for the life of the palette.
type Palette struct {
	mu     sync.Mutex
	colors map[int64]string
}

func NewPalette() *Palette {
	return &Palette{colors: make(map[int64]string)}
}

func (p *Palette) Color(id int64) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.colors[id]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(strconv.FormatInt(id, 10)))
	hue := float64(h.Sum32()%360) / 360
	c := hslToHex(hue, 0.65, 0.5)
	p.colors[id] = c
	return c
}

func (p *Palette) Reset() {
	p.mu.Lock()
	p.colors = make(map[int64]string)
	p.mu.Unlock()
}

func hslToHex(h, s, l float64) string {
	q := l * (1 + s)
	if l >= 0.5 {
		q = l + s - l*s
	}
	pp := 2*l - q
	r := hueToRGB(pp, q, h+1.0/3)
	g := hueToRGB(pp, q, h)
	b := hueToRGB(pp, q, h-1.0/3)
	return fmt.Sprintf("#%02x%02x%02x", toByte(r), toByte(g), toByte(b))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
