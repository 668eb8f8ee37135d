package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mangapages/pkg/models"
)

func TestPixelsRoundTrip(t *testing.T) {
	b := models.BBox{X: 0.25, Y: 0.5, W: 0.125, H: 0.25}
	r := ToPixels(b, 800, 1200)
	if d := cmp.Diff(Rect{X: 200, Y: 600, W: 100, H: 300}, r); d != "" {
		t.Errorf("ToPixels mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff(b, FromPixels(r, 800, 1200), approx); d != "" {
		t.Errorf("FromPixels mismatch (-want +got):\n%s", d)
	}
}

func TestContainerTransform(t *testing.T) {
	const imgW, imgH = 1000, 2000
	recorded := models.BBox{X: 0.1, Y: 0.1, W: 0.2, H: 0.1}
	current := models.BBox{X: 0.5, Y: 0.3, W: 0.4, H: 0.05}

	m := ContainerTransform(recorded, current, imgW, imgH)

	corners := []struct{ from, to Rect }{
		{ToPixels(recorded, imgW, imgH), ToPixels(current, imgW, imgH)},
	}
	for _, c := range corners {
		x0, y0 := Apply(m, c.from.X, c.from.Y)
		x1, y1 := Apply(m, c.from.X+c.from.W, c.from.Y+c.from.H)
		got := Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
		if d := cmp.Diff(c.to, got, approx); d != "" {
			t.Errorf("mapped container mismatch (-want +got):\n%s", d)
		}
	}
}

func TestContainerTransformIdentity(t *testing.T) {
	b := models.BBox{X: 0.3, Y: 0.4, W: 0.2, H: 0.2}
	m := ContainerTransform(b, b, 640, 960)
	if got := SVGTransform(m); got != "matrix(1 0 0 1 0 0)" {
		t.Errorf("SVGTransform = %q", got)
	}
}
