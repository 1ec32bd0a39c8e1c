package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specsJSON = `{
  "WT_V80": {
    "type_id": "3",
    "turbine_model": "Vestas V80-2.0",
    "diameter": 80, "hub_height": 78, "rated_power": 2000,
    "wind_speeds": [4, 5, 6], "cp": [0.30, 0.38, 0.42], "ct": [0.85, 0.8, 0.75],
    "is_manufacturer_data": true,
    "additional_params": {"radius (m)": 40, "z_height (m)": 78, "cT_low (-)": 0.1, "cT_high (-)": 0.9}
  },
  "WT_V90": {
    "type_id": "7",
    "turbine_model": "Vestas V90-3.0",
    "diameter": 90, "hub_height": 105, "rated_power": 3000,
    "wind_speeds": [4, 5, 6, 7]
  },
  "WT_SWT_OFFSHORE": {
    "turbine_model": "Siemens SWT-3.6-120 OFFSHORE",
    "diameter": 120, "hub_height": 90, "rated_power": 3600,
    "wind_speeds": [5, 6, 7]
  },
  "WT_RADIUS_BUG": {
    "turbine_model": "Nordex N117/3600",
    "diameter": 58.5, "radius": 58.5, "hub_height": 120, "rated_power": 3600,
    "wind_speeds": [4, 5]
  },
  "WT_NO_CURVE": {
    "turbine_model": "Enercon E-82 2.000",
    "diameter": 82, "hub_height": 98, "rated_power": 2000
  }
}`

func writeSpecs(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(writeSpecs(t, "specs.json", specsJSON))
	require.NoError(t, err)
	return c
}

func TestLoad_KeepsFileOrder(t *testing.T) {
	c := loadTestCatalog(t)
	require.Equal(t, 5, c.Len())
	assert.Equal(t, "WT_V80", c.Entry(0).TypeCode)
	assert.Equal(t, "WT_V90", c.Entry(1).TypeCode)
	assert.Equal(t, "WT_NO_CURVE", c.Entry(4).TypeCode)
}

func TestLoad_JSONFields(t *testing.T) {
	c := loadTestCatalog(t)
	e := c.Entry(0)
	assert.Equal(t, 3, e.TypeID)
	assert.Equal(t, "Vestas", e.Manufacturer)
	assert.Equal(t, "Vestas V80-2.0", e.ModelDesignation)
	assert.Equal(t, 80.0, e.Diameter)
	assert.Equal(t, 40.0, e.Radius)
	assert.Equal(t, 2000.0, e.RatedPower)
	assert.Equal(t, 0.1, e.CtLow)
	assert.Equal(t, 0.9, e.CtHigh)
	assert.True(t, e.IsManufacturerData)
	assert.True(t, e.IsKnownManufacturer)
	assert.Equal(t, 3, e.WindSpeedsLen)
	assert.False(t, e.IsOffshore)
}

func TestLoad_OffshoreFromModelName(t *testing.T) {
	c := loadTestCatalog(t)
	assert.True(t, c.Entry(2).IsOffshore)
}

func TestLoad_DiameterBelowRadiusCorrected(t *testing.T) {
	c := loadTestCatalog(t)
	assert.Equal(t, 117.0, c.Entry(3).Diameter)
}

func TestLoad_FilteredViewExcludesCurvelessTypes(t *testing.T) {
	c := loadTestCatalog(t)
	assert.Equal(t, []int{0, 1, 2, 3}, c.Indexes(true))
	assert.Len(t, c.Indexes(false), 5)
}

func TestLoad_MissingSingleFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MissingFileSkippedWhenOthersLoad(t *testing.T) {
	c, err := Load(writeSpecs(t, "specs.json", specsJSON), "/does/not/exist.json")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())
}

const specsCSV = `turbine_id,original_name,power,diameter,height,manufacturer,is_offshore
T001,Vestas V47,660,47,55,Vestas,no
T002,Enercon E-40,0.5,44,65,Enercon,no
`

func TestLoad_CSVRenamesAndPowerFix(t *testing.T) {
	c, err := Load(writeSpecs(t, "specs.csv", specsCSV))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	e := c.Entry(0)
	assert.Equal(t, "T001", e.TypeCode)
	assert.Equal(t, "Vestas V47", e.TurbineModel)
	assert.Equal(t, 660.0, e.RatedPower)
	// The synthesized designation keeps the power the parsed name lacks.
	assert.Equal(t, "Vestas V47-660", e.ModelDesignation)

	// 0.5 on a 44 m rotor reads as MW.
	assert.Equal(t, 500.0, c.Entry(1).RatedPower)
}

func TestByTowerProperties_DiameterDriven(t *testing.T) {
	c := loadTestCatalog(t)
	e, idx := c.ByTowerProperties(92, 0, 0, false)
	require.NotNil(t, e)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "WT_V90", e.TypeCode)
}

func TestByTowerProperties_PowerDriven(t *testing.T) {
	c := loadTestCatalog(t)
	e, _ := c.ByTowerProperties(0, 0, 3500, false)
	require.NotNil(t, e)
	assert.Equal(t, 3600.0, e.RatedPower)
}

func TestByTowerProperties_NoExtrapolation(t *testing.T) {
	c := loadTestCatalog(t)
	e, idx := c.ByTowerProperties(400, 0, 0, false)
	assert.Nil(t, e)
	assert.Equal(t, -1, idx)
}

func TestByTowerProperties_OffshorePrefersPowerfulOnTie(t *testing.T) {
	c := loadTestCatalog(t)
	// No usable dimensions except the tie-break preferences.
	offshore, _ := c.ByTowerProperties(0, 0, 0, true)
	assert.Nil(t, offshore)

	// Equal-distance diameter: 85 sits between V80 and V90.
	on, _ := c.ByTowerProperties(85, 0, 0, false)
	require.NotNil(t, on)
	assert.Equal(t, "WT_V80", on.TypeCode)

	off, _ := c.ByTowerProperties(85, 0, 0, true)
	require.NotNil(t, off)
	assert.Equal(t, "WT_V90", off.TypeCode)
}
