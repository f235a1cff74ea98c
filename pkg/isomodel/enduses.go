package isomodel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// EndUse identifies one category of energy consumption.
type EndUse int

const (
	ElecHeat EndUse = iota
	ElecCool
	ElecIntLights
	ElecExtLights
	ElecFans
	ElecPump
	ElecEquipInt
	ElecEquipExt
	ElectDHW
	GasHeat
	GasCool
	GasEquip
	GasDHW
	NumEndUses
)

var endUseNames = [NumEndUses]string{
	"ElecHeat", "ElecCool", "ElecIntLights", "ElecExtLights", "ElecFans", "ElecPump",
	"ElecEquipInt", "ElecEquipExt", "ElectDHW", "GasHeat", "GasCool", "GasEquip", "GasDHW",
}

func (e EndUse) String() string {
	if e < 0 || e >= NumEndUses {
		return fmt.Sprintf("EndUse(%d)", int(e))
	}
	return endUseNames[e]
}

// AllEndUses returns every end use in reporting order.
func AllEndUses() []EndUse {
	out := make([]EndUse, NumEndUses)
	for i := range out {
		out[i] = EndUse(i)
	}
	return out
}

// ParseEndUse looks up an end use by name, ignoring case.
func ParseEndUse(name string) (EndUse, error) {
	for i, n := range endUseNames {
		if strings.EqualFold(n, name) {
			return EndUse(i), nil
		}
	}
	return 0, fmt.Errorf("unknown end use %q", name)
}

// EndUses is the energy use of one period in kWh/m2 of floor area.
type EndUses [NumEndUses]float64

func (u *EndUses) Get(e EndUse) float64 {
	return u[e]
}

func (u *EndUses) Set(e EndUse, v float64) {
	u[e] = v
}

// Total sums every end use.
func (u *EndUses) Total() float64 {
	var t float64
	for _, v := range u {
		t += v
	}
	return t
}

// MarshalJSON encodes the end uses as an object keyed by end use name.
func (u EndUses) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumEndUses)
	for i, v := range u {
		m[endUseNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object written by MarshalJSON. Missing end uses
// are zero.
func (u *EndUses) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*u = EndUses{}
	for name, v := range m {
		e, err := ParseEndUse(name)
		if err != nil {
			return err
		}
		u[e] = v
	}
	return nil
}

// EncodeMsgpack encodes the end uses as a map, like MarshalJSON.
func (u EndUses) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(int(NumEndUses)); err != nil {
		return err
	}
	for i, v := range u {
		if err := enc.EncodeString(endUseNames[i]); err != nil {
			return err
		}
		if err := enc.EncodeFloat64(v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack decodes a map written by EncodeMsgpack.
func (u *EndUses) DecodeMsgpack(dec *msgpack.Decoder) error {
	var m map[string]float64
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*u = EndUses{}
	for name, v := range m {
		e, err := ParseEndUse(name)
		if err != nil {
			return err
		}
		u[e] = v
	}
	return nil
}

// TotalEnergyUse sums every end use over every period.
func TotalEnergyUse(results []EndUses) float64 {
	var t float64
	for i := range results {
		t += results[i].Total()
	}
	return t
}
