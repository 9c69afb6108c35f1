/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
)

// PlotRemap1D shows the density on the Lagrangian mesh and after the remap.
func PlotRemap1D(res *RemapResult1D, delay time.Duration) {
	var (
		xmin, xmax = math.Inf(1), math.Inf(-1)
		fmin, fmax = math.Inf(1), math.Inf(-1)
	)
	for i := range res.X0 {
		xmin, xmax = math.Min(xmin, res.X0[i]), math.Max(xmax, res.X0[i])
		fmin, fmax = math.Min(fmin, res.Rho0[i]), math.Max(fmax, res.Rho0[i])
		fmin, fmax = math.Min(fmin, res.Rho1[i]), math.Max(fmax, res.Rho1[i])
	}
	margin := 0.1 * math.Max(fmax-fmin, 1)
	chart := chart2d.NewChart2D(1920, 1280, float32(xmin), float32(xmax),
		float32(fmin-margin), float32(fmax+margin))
	colorMap := utils2.NewColorMap(-1, 1, 1)
	go chart.Plot()
	if err := chart.AddSeries("Rho Lagrangian", res.X0, res.Rho0,
		chart2d.XGlyph, chart2d.NoLine, colorMap.GetRGB(-0.7)); err != nil {
		panic("unable to add graph series")
	}
	if err := chart.AddSeries("Rho Remapped", res.X1, res.Rho1,
		chart2d.NoGlyph, chart2d.Solid, colorMap.GetRGB(0.7)); err != nil {
		panic("unable to add graph series")
	}
	time.Sleep(delay)
}
