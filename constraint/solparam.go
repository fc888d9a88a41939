// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

// assignRef resolves a row's solref against the global override: when
// EnableOverride is set, every row uses Options.OSolRef regardless of
// its own value.
func assignRef(o *Options, ref [2]float64) [2]float64 {
	if o.enabled(EnableOverride) {
		return o.OSolRef
	}
	return ref
}

// assignImp resolves a row's solimp the same way assignRef does for
// solref.
func assignImp(o *Options, imp [5]float64) [5]float64 {
	if o.enabled(EnableOverride) {
		return o.OSolImp
	}
	return imp
}

// assignMargin resolves a row's margin the same way assignRef does for
// solref.
func assignMargin(o *Options, margin float64) float64 {
	if o.enabled(EnableOverride) {
		return o.OMargin
	}
	return margin
}

// refSafe clamps the standard-form timescale solref[0] so it can never
// resolve faster than two timesteps, unless DisableRefSafe is set.
// Direct-form solref (solref[0] <= 0) is left untouched.
func refSafe(o *Options, ref [2]float64) [2]float64 {
	if o.disabled(DisableRefSafe) {
		return ref
	}
	if ref[0] > 0 && ref[0] < 2*o.Timestep {
		ref[0] = 2 * o.Timestep
	}
	return ref
}

// resolveRowRef picks the solref a row's impedance/regularization is
// cooked from: elliptic tangential friction rows prefer solreffriction
// when it is non-default, falling back to the contact's own solref.
func resolveRowRef(r row) [2]float64 {
	if r.elliptic && r.blockPos > 0 && (r.solreffriction[0] != 0 || r.solreffriction[1] != 0) {
		return r.solreffriction
	}
	return r.solref
}

// repairSolImp clamps solimp[0:2] (the impedance floor/ceiling) into
// [MinImp, MaxImp], the range getImpedance's sigmoid assumes, recording
// a warning when a value needed correcting.
func (d *Data) repairSolImp(imp [5]float64) [5]float64 {
	changed := false
	if imp[0] < MinImp {
		imp[0], changed = MinImp, true
	} else if imp[0] > MaxImp {
		imp[0], changed = MaxImp, true
	}
	if imp[1] < MinImp {
		imp[1], changed = MinImp, true
	} else if imp[1] > MaxImp {
		imp[1], changed = MaxImp, true
	}
	if changed {
		d.warn(WarnBadSolRef, -1)
	}
	return imp
}
