package timeutil

import (
	"math"
	"testing"
	"time"
)

func TestIntervalNextBounds(t *testing.T) {
	i := DefaultInterval
	for n := 0; n < 1000; n++ {
		d := i.Next()
		if d < i.Base || d >= i.Base+i.Spread {
			t.Fatalf("interval %v outside [%v, %v)", d, i.Base, i.Base+i.Spread)
		}
	}
}

func TestIntervalNextNoSpread(t *testing.T) {
	i := Interval{Base: 5 * time.Millisecond}
	if d := i.Next(); d != i.Base {
		t.Fatalf("got %v, want %v", d, i.Base)
	}
}

func TestIntervalRate(t *testing.T) {
	if rate := DefaultInterval.Rate(); math.Abs(rate-66.6) > 0.1 {
		// mean pause of 15ms
		t.Fatalf("unexpected rate %f", rate)
	}
	if rate := (Interval{}).Rate(); rate != 0 {
		t.Fatalf("zero interval should have zero rate, got %f", rate)
	}
}
