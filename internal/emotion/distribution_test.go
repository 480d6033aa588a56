package emotion

import (
	"math"
	"testing"
)

func TestDominantPrefersEarlierLabelOnTie(t *testing.T) {
	var d Distribution
	d[Happy.Index()] = 0.5
	d[Neutral.Index()] = 0.5

	label, confidence := d.Dominant()
	if label != Happy {
		t.Fatalf("expected Happy to win the tie, got %s", label)
	}
	if confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", confidence)
	}
}

func TestDominantArgmax(t *testing.T) {
	var d Distribution
	d[Sad.Index()] = 0.7
	d[Neutral.Index()] = 0.3

	label, confidence := d.Dominant()
	if label != Sad || confidence != 0.7 {
		t.Fatalf("expected Sad/0.7, got %s/%f", label, confidence)
	}
}

func TestValidRejectsBadVectors(t *testing.T) {
	var negative Distribution
	negative[Angry.Index()] = -0.5
	negative[Neutral.Index()] = 1.5
	if negative.Valid(SumTolerance) {
		t.Fatal("expected negative entry to be rejected")
	}

	var short Distribution
	short[Happy.Index()] = 0.4
	if short.Valid(SumTolerance) {
		t.Fatal("expected under-massed vector to be rejected")
	}

	if !NeutralDefault().Valid(SumTolerance) {
		t.Fatal("expected neutral default to be valid")
	}
}

func TestNeutralDefault(t *testing.T) {
	d := NeutralDefault()
	label, confidence := d.Dominant()
	if label != Neutral || confidence != 1.0 {
		t.Fatalf("expected Neutral/1.0, got %s/%f", label, confidence)
	}
	if math.Abs(d.Sum()-1.0) > SumTolerance {
		t.Fatalf("neutral default must sum to 1.0, got %f", d.Sum())
	}
}

func TestFromMapRejectsUnknownLabels(t *testing.T) {
	if _, ok := FromMap(map[string]float64{"Bored": 1.0}); ok {
		t.Fatal("expected unknown label to be rejected")
	}

	d, ok := FromMap(map[string]float64{"Happy": 0.6, "Neutral": 0.4})
	if !ok {
		t.Fatal("expected known labels to be accepted")
	}
	if d.Get(Happy) != 0.6 || d.Get(Neutral) != 0.4 {
		t.Fatalf("unexpected distribution: %v", d)
	}
}

func TestLabelIndexMatchesFixedOrder(t *testing.T) {
	for i, label := range Labels() {
		if label.Index() != i {
			t.Fatalf("label %s reports index %d, want %d", label, label.Index(), i)
		}
	}
	if Label("Unknown").Index() != -1 {
		t.Fatal("unknown label must report index -1")
	}
}
