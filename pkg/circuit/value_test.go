package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogicNotInvolution(t *testing.T) {
	for _, v := range []LogicValue{Zero, One, D, Dbar, X} {
		assert.Equal(t, v, LogicNot(LogicNot(v)), "NOT(NOT(%v)) should be %v", v, v)
	}
}

func TestLogicAndCommutative(t *testing.T) {
	values := []LogicValue{Zero, One, D, Dbar, X}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, LogicAnd(a, b), LogicAnd(b, a), "AND(%v,%v) should commute", a, b)
		}
	}
}

func TestLogicOrCommutative(t *testing.T) {
	values := []LogicValue{Zero, One, D, Dbar, X}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, LogicOr(a, b), LogicOr(b, a), "OR(%v,%v) should commute", a, b)
		}
	}
}

func TestLogicAndAssociative(t *testing.T) {
	values := []LogicValue{Zero, One, D, Dbar, X}
	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				assert.Equal(t, LogicAnd(LogicAnd(a, b), c), LogicAnd(a, LogicAnd(b, c)))
			}
		}
	}
}

func TestLogicOrAssociative(t *testing.T) {
	values := []LogicValue{Zero, One, D, Dbar, X}
	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				assert.Equal(t, LogicOr(LogicOr(a, b), c), LogicOr(a, LogicOr(b, c)))
			}
		}
	}
}

func TestLogicAndZeroAnnihilates(t *testing.T) {
	for _, v := range []LogicValue{Zero, One, D, Dbar, X} {
		assert.Equal(t, Zero, LogicAnd(Zero, v))
	}
}

func TestLogicOrOneAnnihilates(t *testing.T) {
	for _, v := range []LogicValue{Zero, One, D, Dbar, X} {
		assert.Equal(t, One, LogicOr(One, v))
	}
}

func TestLogicAndDAndDbarIsZero(t *testing.T) {
	assert.Equal(t, Zero, LogicAnd(D, Dbar))
	assert.Equal(t, Zero, LogicAnd(Dbar, D))
}

func TestLogicOrDAndDbarIsOne(t *testing.T) {
	assert.Equal(t, One, LogicOr(D, Dbar))
	assert.Equal(t, One, LogicOr(Dbar, D))
}

func TestLogicXorBasics(t *testing.T) {
	assert.Equal(t, Zero, LogicXor(Zero, Zero))
	assert.Equal(t, One, LogicXor(Zero, One))
	assert.Equal(t, One, LogicXor(One, Zero))
	assert.Equal(t, Zero, LogicXor(One, One))
}

func TestLogicNandNorXnorAreNegations(t *testing.T) {
	values := []LogicValue{Zero, One, D, Dbar, X}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, LogicNot(LogicAnd(a, b)), LogicNand(a, b))
			assert.Equal(t, LogicNot(LogicOr(a, b)), LogicNor(a, b))
			assert.Equal(t, LogicNot(LogicXor(a, b)), LogicXnor(a, b))
		}
	}
}

func TestApplyFaultNoFaultIsIdentity(t *testing.T) {
	for _, v := range []LogicValue{Zero, One, D, Dbar, X} {
		assert.Equal(t, v, ApplyFault(v, NoFault))
	}
}

func TestApplyFaultSA0(t *testing.T) {
	assert.Equal(t, D, ApplyFault(One, SA0))
	assert.Equal(t, Zero, ApplyFault(Dbar, SA0))
	assert.Equal(t, Zero, ApplyFault(Zero, SA0))
	assert.Equal(t, X, ApplyFault(X, SA0))
}

func TestApplyFaultSA1(t *testing.T) {
	assert.Equal(t, Dbar, ApplyFault(Zero, SA1))
	assert.Equal(t, One, ApplyFault(D, SA1))
	assert.Equal(t, One, ApplyFault(One, SA1))
	assert.Equal(t, X, ApplyFault(X, SA1))
}

func TestApplyFaultIsIdempotent(t *testing.T) {
	// RunFullSimulation re-applies a gate's fault to its own prior output
	// across repeated trials; the fixed point must be stable.
	for _, fault := range []FaultType{SA0, SA1} {
		for _, v := range []LogicValue{Zero, One, D, Dbar, X} {
			once := ApplyFault(v, fault)
			twice := ApplyFault(once, fault)
			assert.Equal(t, once, twice, "ApplyFault(%v, %v) should be a fixed point", v, fault)
		}
	}
}

func TestLogicValueString(t *testing.T) {
	assert.Equal(t, "0", Zero.String())
	assert.Equal(t, "1", One.String())
	assert.Equal(t, "D", D.String())
	assert.Equal(t, "D'", Dbar.String())
	assert.Equal(t, "X", X.String())
}

func TestIsFaulty(t *testing.T) {
	assert.True(t, D.IsFaulty())
	assert.True(t, Dbar.IsFaulty())
	assert.False(t, Zero.IsFaulty())
	assert.False(t, One.IsFaulty())
	assert.False(t, X.IsFaulty())
}
