package isomodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEndUseNames(t *testing.T) {
	all := AllEndUses()
	require.Len(t, all, 13)
	assert.Equal(t, "ElecHeat", all[0].String())
	assert.Equal(t, "ElecCool", all[1].String())
	assert.Equal(t, "ElectDHW", all[8].String())
	assert.Equal(t, "GasDHW", all[12].String())
	assert.Equal(t, "EndUse(13)", NumEndUses.String())

	for _, e := range all {
		got, err := ParseEndUse(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	e, err := ParseEndUse("elecCOOL")
	require.NoError(t, err)
	assert.Equal(t, ElecCool, e)

	_, err = ParseEndUse("steam")
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	var a, b EndUses
	a.Set(ElecCool, 1.5)
	a.Set(GasHeat, 2)
	b.Set(ElecIntLights, 0.25)

	assert.Equal(t, 1.5, a.Get(ElecCool))
	assert.Equal(t, 3.5, a.Total())
	assert.Equal(t, 3.75, TotalEnergyUse([]EndUses{a, b}))
	assert.Equal(t, 0.0, TotalEnergyUse(nil))
}

func TestEndUsesJSON(t *testing.T) {
	var u EndUses
	u.Set(ElecCool, 1.25)
	u.Set(GasDHW, 3)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ElecCool":1.25`)
	assert.Contains(t, string(b), `"ElecHeat":0`)

	var got EndUses
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, u, got)

	assert.Error(t, json.Unmarshal([]byte(`{"Steam":1}`), &got))
}

func TestEndUsesMsgpack(t *testing.T) {
	in := []EndUses{{}, {}}
	in[1].Set(ElecFans, 0.5)

	b, err := msgpack.Marshal(in)
	require.NoError(t, err)

	var generic []map[string]float64
	require.NoError(t, msgpack.Unmarshal(b, &generic))
	require.Len(t, generic, 2)
	assert.Equal(t, 0.5, generic[1]["ElecFans"])

	var out []EndUses
	require.NoError(t, msgpack.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
