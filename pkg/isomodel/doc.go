// Package isomodel estimates building energy use with the ISO 13790
// monthly quasi-steady-state method and the simple hourly (5R1C) method.
//
// A UserModel is loaded from a building .ism file plus optional defaults
// files, and from the EPW weather file the building names. It converts into
// a MonthlyModel or an HourlyModel, each an independent copy, whose
// Simulate methods return EndUses in kWh per m2 of floor area.
package isomodel
