// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package dssimjob provides JSON (de)serialization for a dssim.Attr-shaped
// job spec, for use by the REST API and the CLI's -job flag. Missing fields
// unmarshal to NewAttr's defaults rather than Go's zero values, the way
// internal/ops/pre's OpXxx types unmarshal onto a pre-populated defaults
// struct.
package dssimjob

import (
	"encoding/json"

	"github.com/mlnoga/dssim/internal/dssim"
)

// Spec is the wire shape of a comparison job: the attribute knobs plus
// which outputs the caller wants back.
type Spec struct {
	ColorWeight     float32   `json:"colorWeight"`
	NumScales       int       `json:"numScales"`
	ScaleWeights    []float64 `json:"scaleWeights,omitempty"`
	DetailSize      int       `json:"detailSize"`
	SubsampleChroma bool      `json:"subsampleChroma"`
	Gamma           float64   `json:"gamma"`
	WantMap         bool      `json:"wantMap"`
}

// defaultSpec mirrors NewAttr's defaults plus a gamma default, the same one
// cmd/dssim's -gamma flag uses: the sRGB linearization exponent, the
// inverse of the commonly quoted 2.2 gamma, since buildGammaLUT computes
// (i/255)^(1/gamma).
func defaultSpec() Spec {
	a := dssim.NewAttr()
	return Spec{
		ColorWeight:     float32(a.ColorWeight),
		NumScales:       a.NumScales,
		DetailSize:      a.DetailSize,
		SubsampleChroma: a.SubsampleChroma,
		Gamma:           1.0 / 2.2,
		WantMap:         false,
	}
}

// NewSpecDefaults returns a Spec populated with the default Attr values,
// for callers that want to start from them and override a few fields.
func NewSpecDefaults() Spec { return defaultSpec() }

// UnmarshalJSON fills missing fields from defaultSpec() rather than Go's
// zero values, so a job document that only sets e.g. "colorWeight" still
// gets the documented defaults for everything else.
func (s *Spec) UnmarshalJSON(data []byte) error {
	type defaults Spec
	def := defaults(defaultSpec())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*s = Spec(def)
	return nil
}

// Attr builds a *dssim.Attr from the spec, applying SetScales/
// SetColorHandling the way a hand-constructed Attr would.
func (s Spec) Attr() *dssim.Attr {
	a := dssim.NewAttr()
	a.SetScales(s.NumScales, s.ScaleWeights)
	a.SetColorHandling(float64(s.ColorWeight), s.SubsampleChroma)
	a.DetailSize = s.DetailSize
	return a
}
