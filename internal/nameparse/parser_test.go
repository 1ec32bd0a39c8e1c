package nameparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Vestas(t *testing.T) {
	// The trailing "3.0MW" is not dash-separated, so only the designation
	// and diameter come out of the name.
	p := Parse("VESTAS V90 3.0MW")
	assert.Equal(t, "VESTAS V90", p.ModelDesignation)
	assert.Equal(t, "VESTAS", p.Manufacturer)
	assert.Equal(t, 90.0, p.Diameter)
	assert.Equal(t, 0.0, p.Power)
	assert.True(t, p.IsKnownManufacturer)
}

func TestParse_VestasDash(t *testing.T) {
	p := Parse("Vestas V112-3.45")
	assert.Equal(t, 112.0, p.Diameter)
	assert.Equal(t, 3450.0, p.Power)
}

func TestParse_BareCodeGetsPrefix(t *testing.T) {
	p := Parse("V90")
	assert.Equal(t, "Vestas", p.Manufacturer)
	assert.Equal(t, 90.0, p.Diameter)
}

func TestParse_Enercon(t *testing.T) {
	// The E-66/18.70 variant actually carries a 70 m rotor.
	p := Parse("Enercon E-66/18.70")
	assert.Equal(t, "Enercon", p.Manufacturer)
	assert.Equal(t, 70.0, p.Diameter)
	assert.Equal(t, 1800.0, p.Power)
}

func TestParse_EnerconSimple(t *testing.T) {
	p := Parse("Enercon E-115 EP3")
	assert.Equal(t, 115.0, p.Diameter)
}

func TestParse_SiemensSWT(t *testing.T) {
	p := Parse("Siemens SWT-3.6-120")
	assert.Equal(t, "Siemens", p.Manufacturer)
	assert.Equal(t, 120.0, p.Diameter)
	assert.Equal(t, 3600.0, p.Power)
}

func TestParse_BonusPowerFirst(t *testing.T) {
	p := Parse("AN Bonus 450/36")
	assert.Equal(t, "AN Bonus", p.Manufacturer)
	assert.Equal(t, 36.0, p.Diameter)
	assert.Equal(t, 450.0, p.Power)
}

func TestParse_BonusDiameterFirst(t *testing.T) {
	p := Parse("Bonus 37/450")
	assert.Equal(t, 37.0, p.Diameter)
	assert.Equal(t, 450.0, p.Power)
}

func TestParse_Senvion(t *testing.T) {
	p := Parse("Senvion 3.4M114")
	assert.Equal(t, "Senvion", p.Manufacturer)
	assert.Equal(t, 114.0, p.Diameter)
	assert.Equal(t, 3400.0, p.Power)
}

func TestParse_SenvionRoundSix(t *testing.T) {
	p := Parse("Senvion 6.2M126")
	assert.Equal(t, 6200.0, p.Power)
}

func TestParse_BardRomanFive(t *testing.T) {
	p := Parse("BARD VM")
	assert.Equal(t, "BARD 5.0", p.ModelDesignation)
	assert.Equal(t, 5000.0, p.Power)
}

func TestParse_MiconSweptArea(t *testing.T) {
	// Micon names carry swept area, not diameter: M 530 is a 26 m rotor.
	p := Parse("Micon M 530")
	assert.InDelta(t, 25.98, p.Diameter, 0.01)
}

func TestParse_NegMiconSwap(t *testing.T) {
	p := Parse("NEG Micon NM 600/43")
	assert.Equal(t, 43.0, p.Diameter)
	assert.Equal(t, 600.0, p.Power)
}

func TestParse_WTNPackedField(t *testing.T) {
	p := Parse("WTN Wind TechnikNord WTN 648")
	assert.Equal(t, 48.0, p.Diameter)
	assert.Equal(t, 600.0, p.Power)
}

func TestParse_WTNExplicit(t *testing.T) {
	p := Parse("WTN WTN 500/48")
	assert.Equal(t, 48.0, p.Diameter)
	assert.Equal(t, 500.0, p.Power)
}

func TestParse_EAZTwelve(t *testing.T) {
	p := Parse("EAZ Wind EAZ-Twelve")
	assert.Equal(t, 12.0, p.Diameter)
}

func TestParse_NordexPlaceholderPower(t *testing.T) {
	p := Parse("Nordex N149/5.X")
	assert.Equal(t, 149.0, p.Diameter)
	assert.Equal(t, 5000.0, p.Power)
}

func TestParse_DeWindDecimeters(t *testing.T) {
	p := Parse("DeWind D6")
	assert.Equal(t, 60.0, p.Diameter)
}

func TestParse_AirconDecawatts(t *testing.T) {
	p := Parse("Aircon 30")
	assert.Equal(t, 300.0, p.Power)
}

func TestParse_GaiaSweptArea(t *testing.T) {
	p := Parse("Gaia 133-11kW")
	assert.Equal(t, 11.0, p.Power)
	assert.InDelta(t, 13.01, p.Diameter, 0.01)
}

func TestParse_WF101Code(t *testing.T) {
	p := Parse("FO_09001")
	assert.Equal(t, 90.0, p.Diameter)
	assert.Equal(t, "Vestas", p.Manufacturer)
	require.NotNil(t, p.ManufacturerPattern)
	assert.True(t, p.ManufacturerPattern.MatchesPrefix("Vestas"))
}

func TestParse_WF101UnknownCode(t *testing.T) {
	p := Parse("FO_08099")
	assert.Equal(t, 80.0, p.Diameter)
	assert.Equal(t, "", p.Manufacturer)
}

func TestParse_DashAfterManufacturerBecomesSpace(t *testing.T) {
	p := Parse("Haliade-6")
	assert.Equal(t, "Haliade 6", p.ModelDesignation)
	assert.Equal(t, 6000.0, p.Power)
}

func TestParse_GeneralElectric(t *testing.T) {
	p := Parse("GE 3.2-103")
	assert.Equal(t, 103.0, p.Diameter)
	assert.Equal(t, 3200.0, p.Power)
}

func TestParse_CatchAllManufacturer(t *testing.T) {
	p := Parse("Windkraft GmbH X-500")
	assert.False(t, p.IsKnownManufacturer)
	assert.Nil(t, p.ManufacturerPattern)
}

func TestParse_Unparseable(t *testing.T) {
	p := Parse("unknown turbine")
	assert.Equal(t, "", p.ModelDesignation)
}

func TestParse_CommaDecimal(t *testing.T) {
	p := Parse("Vestas V90-3,0")
	assert.Equal(t, 3000.0, p.Power)
}

func TestParse_RuleOrderSiemensGamesa(t *testing.T) {
	p := Parse("Siemens Gamesa SG-8.0-167 DD")
	assert.Equal(t, "Siemens Gamesa", p.Manufacturer)
	assert.Equal(t, 167.0, p.Diameter)
	assert.Equal(t, 8000.0, p.Power)
}

func TestManufacturerPattern_Find(t *testing.T) {
	p := Parse("Vestas V80-2.0")
	require.NotNil(t, p.ManufacturerPattern)
	assert.Equal(t, "Vestas", p.ManufacturerPattern.Find("Vestas Wind Systems"))
	assert.Equal(t, "", p.ManufacturerPattern.Find("Enercon GmbH"))
}

func TestEnsureManufacturerPrefix_Known(t *testing.T) {
	assert.Equal(t, "Enercon E-82", EnsureManufacturerPrefix("E-82"))
	assert.Equal(t, "Siemens SWT-2.3-93", EnsureManufacturerPrefix("SWT-2.3-93"))
	assert.Equal(t, "Nordex N117", EnsureManufacturerPrefix("N117"))
}

func TestEnsureManufacturerPrefix_AlreadyPrefixed(t *testing.T) {
	assert.Equal(t, "Some Turbine 9000", EnsureManufacturerPrefix("Some Turbine 9000"))
}

func TestEnsureManufacturerPrefix_OrderSWTBeforeB(t *testing.T) {
	// SWT must not be caught by the single-letter rules.
	assert.Equal(t, "Siemens SWT-120", EnsureManufacturerPrefix("SWT-120"))
	assert.Equal(t, "NEG Micon NM 82", EnsureManufacturerPrefix("NM 82"))
}
