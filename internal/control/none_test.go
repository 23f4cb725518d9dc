package control

import (
	"testing"

	"github.com/san-kum/walksim/internal/dynamo"
)

func TestNone(t *testing.T) {
	u := NewNone(1).Compute(dynamo.State{0.1, 0.2, 0.3, 0.4}, 1.0)
	if len(u) != 1 || u[0] != 0 {
		t.Errorf("expected single zero input, got %v", u)
	}
}

func TestConstant(t *testing.T) {
	c := NewConstant(0.25)
	u := c.Compute(nil, 0)
	if len(u) != 1 || u[0] != 0.25 {
		t.Fatalf("expected [0.25], got %v", u)
	}

	u[0] = 99
	if again := c.Compute(nil, 1); again[0] != 0.25 {
		t.Errorf("caller mutation leaked into policy: %v", again)
	}
}
