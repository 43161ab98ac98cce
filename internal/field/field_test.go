package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModNegative(t *testing.T) {
	v := big.NewInt(-5)
	got := Mod(v)
	require.True(t, got.Sign() >= 0)
	require.Equal(t, Mod(new(big.Int).Add(v, P)), got)
}

func TestDeriveSlopeAndIntercept(t *testing.T) {
	slope := big.NewInt(7)
	intercept := big.NewInt(42)

	x1 := big.NewInt(11)
	x2 := big.NewInt(19)

	c1 := Point{X: x1, Y: Eval(slope, x1, intercept)}
	c2 := Point{X: x2, Y: Eval(slope, x2, intercept)}

	gotSlope, ok := DeriveSlope(c1, c2)
	require.True(t, ok)
	require.Equal(t, 0, gotSlope.Cmp(slope))

	gotIntercept := Intercept(c1, gotSlope)
	require.Equal(t, 0, gotIntercept.Cmp(intercept))
}

func TestDeriveSlopeCollision(t *testing.T) {
	c1 := Point{X: big.NewInt(5), Y: big.NewInt(1)}
	c2 := Point{X: big.NewInt(5), Y: big.NewInt(2)}

	_, ok := DeriveSlope(c1, c2)
	require.False(t, ok)
}
