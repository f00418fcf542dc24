/*
Copyright © 2024 the GETM domain authors.
This file is part of mossco-getm.

mossco-getm is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mossco-getm is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mossco-getm.  If not, see <http://www.gnu.org/licenses/>.
*/

package getm

import "github.com/ctessum/unit"

var (
	m2PerS  = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	m2PerS2 = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}
	m2PerS3 = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -3}
	perS2   = unit.Dimensions{unit.TimeDim: -2}
	perM    = unit.Dimensions{unit.LengthDim: -1}
	perK    = unit.Dimensions{unit.TemperatureDim: -1}
	wPerM2  = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3}
	kgPerM2 = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2}
)

// catalog lists every array the field store can hold.
var catalog = []FieldSpec{
	// Velocities.
	{Name: "uu", Family: U, Level: Centers, Units: m2PerS, Description: "layer-integrated velocity in local x-direction"},
	{Name: "vv", Family: V, Level: Centers, Units: m2PerS, Description: "layer-integrated velocity in local y-direction"},
	{Name: "ww", Family: Z, Level: Interfaces, Units: unit.MeterPerSecond, Description: "grid-related vertical velocity"},
	{Name: "w", Family: Z, Level: Interfaces, Units: unit.MeterPerSecond, Description: "physical vertical velocity"},
	{Name: "velx3d", Family: Z, Level: Centers, Units: unit.MeterPerSecond, Description: "eastward velocity at cell centres"},
	{Name: "vely3d", Family: Z, Level: Centers, Units: unit.MeterPerSecond, Description: "northward velocity at cell centres"},
	{Name: "velx2dadv", Family: Z, Level: Surface, Units: unit.MeterPerSecond, Description: "depth-averaged eastward advective velocity"},
	{Name: "vely2dadv", Family: Z, Level: Surface, Units: unit.MeterPerSecond, Description: "depth-averaged northward advective velocity"},
	{Name: "uuEx", Family: U, Level: Centers, Units: m2PerS2, Description: "explicit terms of the x-momentum equation"},
	{Name: "vvEx", Family: V, Level: Centers, Units: m2PerS2, Description: "explicit terms of the y-momentum equation"},

	// Momentum budget terms.
	{Name: "tdv_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum tendency"},
	{Name: "adv_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum advection"},
	{Name: "vsd_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum vertical shear diffusion"},
	{Name: "hsd_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum horizontal shear diffusion"},
	{Name: "cor_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum Coriolis term"},
	{Name: "epg_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum external pressure gradient"},
	{Name: "ipg_u", Family: U, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "x-momentum internal pressure gradient"},
	{Name: "tdv_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum tendency"},
	{Name: "adv_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum advection"},
	{Name: "vsd_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum vertical shear diffusion"},
	{Name: "hsd_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum horizontal shear diffusion"},
	{Name: "cor_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum Coriolis term"},
	{Name: "epg_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum external pressure gradient"},
	{Name: "ipg_v", Family: V, Level: Centers, Feature: MomentumTerms, Units: m2PerS2, Description: "y-momentum internal pressure gradient"},

	{Name: "sf", Family: Z, Level: Centers, Feature: StructureFriction, Units: perM, Description: "structure friction coefficient"},

	// Layer geometry.
	{Name: "ho", Family: Z, Level: Centers, Units: unit.Meter, Description: "old layer height at cell centres"},
	{Name: "hn", Family: Z, Level: Centers, Units: unit.Meter, Description: "layer height at cell centres"},
	{Name: "hvel", Family: Z, Level: Centers, Units: unit.Meter, Description: "layer height for velocity interpolation"},
	{Name: "huo", Family: U, Level: Centers, Units: unit.Meter, Description: "old layer height at U faces"},
	{Name: "hun", Family: U, Level: Centers, Units: unit.Meter, Description: "layer height at U faces"},
	{Name: "hvo", Family: V, Level: Centers, Units: unit.Meter, Description: "old layer height at V faces"},
	{Name: "hvn", Family: V, Level: Centers, Units: unit.Meter, Description: "layer height at V faces"},
	{Name: "hcc", Family: Z, Level: Centers, Units: unit.Dimless, Description: "hydrostatic consistency criterion"},
	{Name: "zwn", Family: Z, Level: Interfaces, Units: unit.Meter, Description: "interface positions"},
	{Name: "zcn", Family: Z, Level: Centers, Units: unit.Meter, Description: "layer centre positions"},

	// Turbulence.
	{Name: "num", Family: Z, Level: Interfaces, Units: m2PerS, Description: "eddy viscosity"},
	{Name: "nuh", Family: Z, Level: Interfaces, Units: m2PerS, Description: "eddy diffusivity"},
	{Name: "tke", Family: Z, Level: Interfaces, Units: m2PerS2, Description: "turbulent kinetic energy"},
	{Name: "eps", Family: Z, Level: Interfaces, Units: m2PerS3, Description: "dissipation rate"},
	{Name: "SS", Family: Z, Level: Interfaces, Units: perS2, Description: "shear frequency squared"},

	// Stratification.
	{Name: "NN", Family: Z, Level: Interfaces, Feature: Baroclinic, Units: perS2, Description: "buoyancy frequency squared"},
	{Name: "S", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.Dimless, Description: "salinity [psu]"},
	{Name: "T", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.Kelvin, Description: "potential temperature [°C]"},
	{Name: "rho", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.KilogramPerMeter3, Description: "density"},
	{Name: "buoy", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.MeterPerSecond2, Description: "buoyancy"},
	{Name: "alpha", Family: Z, Level: Centers, Feature: Baroclinic, Units: perK, Description: "thermal expansion coefficient"},
	{Name: "beta", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.Dimless, Description: "haline contraction coefficient [1/psu]"},
	{Name: "rad", Family: Z, Level: Interfaces, Feature: Baroclinic, Units: wPerM2, Description: "short-wave radiation"},
	{Name: "light", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.Dimless, Description: "fraction of surface light"},
	{Name: "heatflux_net", Family: Z, Level: Surface, Feature: Baroclinic, Units: wPerM2, Description: "net surface heat flux"},
	{Name: "A", Family: Z, Level: Surface, Feature: Baroclinic, Units: unit.Dimless, Description: "light attenuation weighting"},
	{Name: "g1", Family: Z, Level: Surface, Feature: Baroclinic, Units: unit.Meter, Description: "first light attenuation length"},
	{Name: "g2", Family: Z, Level: Surface, Feature: Baroclinic, Units: unit.Meter, Description: "second light attenuation length"},
	{Name: "bioshade", Family: Z, Level: Centers, Feature: Baroclinic, Units: unit.Dimless, Description: "biological light shading"},

	{Name: "spm", Family: Z, Level: Centers, Feature: SuspendedSediment, Units: unit.KilogramPerMeter3, Description: "suspended matter concentration"},
	{Name: "spm_ws", Family: Z, Level: Centers, Feature: SuspendedSediment, Units: unit.MeterPerSecond, Description: "suspended matter settling velocity"},
	{Name: "spm_pool", Family: Z, Level: Surface, Feature: SuspendedSediment, Units: kgPerM2, Description: "suspended matter bottom pool"},

	// Sea surface and depths.
	{Name: "sseo", Family: Z, Level: Surface, Units: unit.Meter, Description: "old elevation at cell centres"},
	{Name: "ssen", Family: Z, Level: Surface, Units: unit.Meter, Description: "elevation at cell centres"},
	{Name: "ssuo", Family: U, Level: Surface, Units: unit.Meter, Description: "old elevation at U faces"},
	{Name: "ssun", Family: U, Level: Surface, Units: unit.Meter, Description: "elevation at U faces"},
	{Name: "ssvo", Family: V, Level: Surface, Units: unit.Meter, Description: "old elevation at V faces"},
	{Name: "ssvn", Family: V, Level: Surface, Units: unit.Meter, Description: "elevation at V faces"},
	{Name: "Dn", Family: Z, Level: Surface, Units: unit.Meter, Description: "total water depth at cell centres"},
	{Name: "Dveln", Family: Z, Level: Surface, Units: unit.Meter, Description: "total water depth for velocity interpolation"},
	{Name: "Dun", Family: U, Level: Surface, Units: unit.Meter, Description: "total water depth at U faces"},
	{Name: "Dvn", Family: V, Level: Surface, Units: unit.Meter, Description: "total water depth at V faces"},
	{Name: "Uadv", Family: U, Level: Surface, Units: m2PerS, Description: "depth-integrated advective transport in x-direction"},
	{Name: "Vadv", Family: V, Level: Surface, Units: m2PerS, Description: "depth-integrated advective transport in y-direction"},

	// Friction.
	{Name: "rru", Family: U, Level: Surface, Units: unit.MeterPerSecond, Description: "bottom friction coefficient at U faces"},
	{Name: "rrv", Family: V, Level: Surface, Units: unit.MeterPerSecond, Description: "bottom friction coefficient at V faces"},
	{Name: "zub", Family: U, Level: Surface, Units: unit.Meter, Description: "bottom roughness length at U faces"},
	{Name: "zvb", Family: V, Level: Surface, Units: unit.Meter, Description: "bottom roughness length at V faces"},
	{Name: "taus", Family: Z, Level: Surface, Units: m2PerS2, Description: "kinematic surface stress"},
	{Name: "taubx", Family: U, Level: Surface, Units: m2PerS2, Description: "kinematic bottom stress in x-direction"},
	{Name: "tauby", Family: V, Level: Surface, Units: m2PerS2, Description: "kinematic bottom stress in y-direction"},
	{Name: "taub", Family: Z, Level: Surface, Units: m2PerS2, Description: "kinematic bottom stress"},
}
