package meter

import "testing"

func TestAbsolutes(t *testing.T) {
	var a Absolutes

	if _, _, ok := a.MinMax(); ok {
		t.Error("absolutes should be invalid before the first reading")
	}

	a.Observe(-30)
	a.Observe(-55)
	a.Observe(-12)

	min, max, ok := a.MinMax()
	if !ok || min != -55 || max != -12 {
		t.Errorf("MinMax() = %f,%f,%v, want -55,-12,true", min, max, ok)
	}

	a.Reset()
	if _, _, ok = a.MinMax(); ok {
		t.Error("absolutes should be invalid after reset")
	}
}

func TestDamper(t *testing.T) {
	d := NewDamper(4)

	if got := d.Damp(-30); got != -30 {
		t.Errorf("first reading should pass through, got %f", got)
	}
	if got := d.Damp(-20); got != -20 {
		t.Errorf("rising reading should pass through, got %f", got)
	}

	// A sharp drop is pulled back toward the recent history
	got := d.Damp(-60)
	if got != -60 {
		t.Errorf("single falling reading averages only itself, got %f", got)
	}
	got = d.Damp(-80)
	if got <= -80 || got >= -60 {
		t.Errorf("damped value %f should sit between the falling readings", got)
	}

	// Rising again clears the run
	if got = d.Damp(-10); got != -10 {
		t.Errorf("recovery should pass through, got %f", got)
	}
}
