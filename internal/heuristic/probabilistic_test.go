package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProbabilistic_Deterministic(t *testing.T) {
	a := MapProbabilistic("123", 52.37, 4.89, 0)
	b := MapProbabilistic("123", 52.37, 4.89, 0)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestMapProbabilistic_NumericIDEncodesDiameter(t *testing.T) {
	// 10100 reads as diameter 101; only one common model matches exactly.
	assert.Equal(t, "E101", MapProbabilistic("10100", 48, 10, 0))
}

func TestMapProbabilistic_ExplicitDiameter(t *testing.T) {
	assert.Equal(t, "N131", MapProbabilistic("whatever", 55, 5, 131))
}

func TestMapProbabilistic_DiameterNearMiss(t *testing.T) {
	// 133 has no exact match; the widened tolerance catches SG-132 first.
	assert.Equal(t, "SG-132", MapProbabilistic("x", 10, 100, 133))
}

func TestMapProbabilistic_OutsideEuropeFallsBackToCommonPool(t *testing.T) {
	got := MapProbabilistic("abc", 10, 100, 0)
	assert.Contains(t, commonModels, got)
}

func TestMapProbabilistic_OffshorePool(t *testing.T) {
	pool := append(repeat(offshoreModels, 1), "V150", "E126", "SWT-130", "N149")
	got := MapProbabilistic("abc", 55, 7, 0)
	assert.Contains(t, pool, got)
}

func TestProbablyOffshore(t *testing.T) {
	assert.True(t, probablyOffshore(55, 7))   // North Sea
	assert.True(t, probablyOffshore(55.5, 14)) // Baltic
	assert.True(t, probablyOffshore(40, 5))   // Mediterranean
	assert.False(t, probablyOffshore(50, 9))  // inland Germany
}

func TestModelDiameter(t *testing.T) {
	assert.Equal(t, 112, modelDiameter("V112"))
	assert.Equal(t, 101, modelDiameter("E101"))
	assert.Equal(t, 149, modelDiameter("N149"))
	assert.Equal(t, 154, modelDiameter("SWT-154"))
	assert.Equal(t, 114, modelDiameter("SG-114"))
	assert.Equal(t, 0, modelDiameter("GE-1.5"))
	assert.Equal(t, 0, modelDiameter("Senvion-6M"))
	assert.Equal(t, 0, modelDiameter("Bonus"))
}
