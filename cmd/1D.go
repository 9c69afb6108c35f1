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
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/goale/DG1D"
	"github.com/notargets/goale/InputParameters"
	"github.com/notargets/goale/remap"
	"github.com/notargets/goale/sod_shock_tube"
	"github.com/notargets/goale/utils"
)

// OneDCmd represents the 1D command
var OneDCmd = &cobra.Command{
	Use:   "1D",
	Short: "One dimensional remap of a discontinuous Galerkin solution",
	Long: `
Projects an initial density onto a line mesh, moves the interior nodes and
remaps density, energy, velocity and an optional level set onto the moved mesh,

goale 1D -n 2 -k 40 --init step`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("1D called")
		m1d := &Remap1D{}
		if m1d.Params, err = processInput1D(cmd); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		m1d.Graph, _ = cmd.Flags().GetBool("graph")
		dr, _ := cmd.Flags().GetInt("delay")
		m1d.Delay = time.Duration(dr) * time.Millisecond
		m1d.PerfCounters, _ = cmd.Flags().GetBool("perfCounters")
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		m1d.Params.Print()
		res, err := RunRemap1D(m1d, logrus.StandardLogger())
		if err != nil {
			panic(err)
		}
		res.Print()
		if m1d.Graph {
			PlotRemap1D(res, m1d.Delay)
		}
	},
}

func init() {
	rootCmd.AddCommand(OneDCmd)
	def := InputParameters.NewRemapParameters()
	OneDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for remap parameters, flags override its values")
	OneDCmd.Flags().IntP("n", "n", def.PolynomialOrder, "polynomial degree, 0 is cell centered")
	OneDCmd.Flags().IntP("k", "k", def.Elements, "Number of elements in model")
	OneDCmd.Flags().Float64("xMin", def.XMin, "Minimum X coordinate")
	OneDCmd.Flags().Float64("xMax", def.XMax, "Maximum X coordinate")
	OneDCmd.Flags().Float64("CFL", def.CFL, "fraction of the low order pseudo-time step limit")
	OneDCmd.Flags().Int("boundsStencil", def.BoundsStencil, "layers of neighbors the local bounds reach over")
	OneDCmd.Flags().Bool("lumped", def.LumpedProjection, "lumped projection of the Lagrangian density")
	OneDCmd.Flags().Bool("verify", def.Verify, "check conservation and bounds at every evaluation")
	OneDCmd.Flags().IntP("parallel", "p", def.ParallelDegree, "goroutine partitions for element local work")
	OneDCmd.Flags().Int("quadrature", def.QuadraturePoints, "quadrature points per element, 0 is n+2")
	OneDCmd.Flags().String("init", def.InitType, "initial condition: step, sine, constant or sod")
	OneDCmd.Flags().Float64("displacement", def.Displacement, "interior node motion in element lengths, below 0.5")
	OneDCmd.Flags().Bool("levelSet", def.LevelSet, "carry a level set distance field")
	OneDCmd.Flags().BoolP("graph", "g", false, "display a graph of the density before and after the remap")
	OneDCmd.Flags().IntP("delay", "d", 0, "milliseconds to display the graph")
	OneDCmd.Flags().Bool("profile", false, "write a CPU profile of the run into the current directory")
	OneDCmd.Flags().Bool("perfCounters", false, "count CPU instructions of the remap (linux)")
	for _, key := range paramKeys {
		if err := viper.BindPFlag(key, OneDCmd.Flags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// Flags that can also come from the config file or the environment
var paramKeys = []string{"n", "k", "xMin", "xMax", "CFL", "boundsStencil", "lumped", "verify",
	"parallel", "quadrature", "init", "displacement", "levelSet"}

func processInput1D(cmd *cobra.Command) (rp *InputParameters.RemapParameters, err error) {
	var (
		ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		data      []byte
	)
	rp = InputParameters.NewRemapParameters()
	if len(ICFile) != 0 {
		if data, err = os.ReadFile(ICFile); err != nil {
			return
		}
		if err = rp.Parse(data); err != nil {
			return
		}
	}
	applyOverrides(rp, viper.GetViper())
	err = rp.Validate()
	return
}

// applyOverrides copies every parameter set by a flag, the config file or
// the environment over the values read from the input file.
func applyOverrides(rp *InputParameters.RemapParameters, v *viper.Viper) {
	set := func(key string, apply func()) {
		if v.IsSet(key) {
			apply()
		}
	}
	set("n", func() { rp.PolynomialOrder = v.GetInt("n") })
	set("k", func() { rp.Elements = v.GetInt("k") })
	set("xMin", func() { rp.XMin = v.GetFloat64("xMin") })
	set("xMax", func() { rp.XMax = v.GetFloat64("xMax") })
	set("CFL", func() { rp.CFL = v.GetFloat64("CFL") })
	set("boundsStencil", func() { rp.BoundsStencil = v.GetInt("boundsStencil") })
	set("lumped", func() { rp.LumpedProjection = v.GetBool("lumped") })
	set("verify", func() { rp.Verify = v.GetBool("verify") })
	set("parallel", func() { rp.ParallelDegree = v.GetInt("parallel") })
	set("quadrature", func() { rp.QuadraturePoints = v.GetInt("quadrature") })
	set("init", func() { rp.InitType = v.GetString("init") })
	set("displacement", func() { rp.Displacement = v.GetFloat64("displacement") })
	set("levelSet", func() { rp.LevelSet = v.GetBool("levelSet") })
}

type Remap1D struct {
	Params       *InputParameters.RemapParameters
	Graph        bool
	Delay        time.Duration
	PerfCounters bool
}

type RemapResult1D struct {
	MassBefore, MassAfter float64
	RhoMin, RhoMax        float64
	Steps                 int
	Instructions          uint64    // Zero unless counted
	X0, X1                []float64 // DOF coordinates on the Lagrangian and the new mesh
	Rho0, Rho1            []float64 // Density at the DOFs
	RhoAvg1               []float64 // Element mean density on the new mesh
	Fields                remap.LagrangianFields
}

func (res *RemapResult1D) Print() {
	fmt.Printf("%d\t\t\t\t= Pseudo-time Steps\n", res.Steps)
	fmt.Printf("%12.8f\t\t= Mass Before\n", res.MassBefore)
	fmt.Printf("%12.8f\t\t= Mass After\n", res.MassAfter)
	fmt.Printf("%12.4e\t\t= Relative Mass Change\n", (res.MassAfter-res.MassBefore)/res.MassBefore)
	fmt.Printf("[%8.5f,%8.5f]\t= Density Range\n", res.RhoMin, res.RhoMax)
	if len(res.RhoAvg1) != 0 {
		fmt.Printf("[%8.5f,%8.5f]\t= Element Mean Density Range\n", floats.Min(res.RhoAvg1), floats.Max(res.RhoAvg1))
	}
	if res.Instructions != 0 {
		fmt.Printf("%d\t\t= CPU Instructions\n", res.Instructions)
	}
	fmt.Println(utils.GetMemUsage())
}

// Profile1D holds the Lagrangian fields of an initial condition.
type Profile1D struct {
	Rho, Energy, Velocity func(x float64) float64
}

// sodTime is when the Sod shock tube is sampled, the shock is then at 85% of the domain
const sodTime = 0.2

// InitialCondition returns the profile named by initType on [xmin,xmax].
func InitialCondition(initType string, xmin, xmax float64) (p Profile1D, err error) {
	var (
		L   = xmax - xmin
		mid = 0.5 * (xmin + xmax)
	)
	p.Velocity = func(x float64) float64 { return math.Sin(math.Pi * (x - xmin) / L) }
	switch initType {
	case "step":
		p.Rho = func(x float64) float64 {
			if x < mid {
				return 1
			}
			return 5
		}
	case "sine":
		p.Rho = func(x float64) float64 { return 3 + 2*math.Sin(2*math.Pi*(x-xmin)/L) }
	case "constant":
		p.Rho = func(x float64) float64 { return 1 }
	case "sod":
		var (
			s  = sod_shock_tube.NewSod()
			at = func(x float64) (rho, u, e float64) {
				rho, u, _, e = s.At((x-xmin)/L, sodTime)
				return
			}
		)
		p.Rho = func(x float64) float64 { rho, _, _ := at(x); return rho }
		p.Energy = func(x float64) float64 { _, _, e := at(x); return e }
		p.Velocity = func(x float64) float64 { _, u, _ := at(x); return u }
	default:
		err = fmt.Errorf("unknown initial condition \"%s\"", initType)
		return
	}
	if p.Energy == nil {
		p.Energy = p.Rho
	}
	return
}

// DisplaceNodes moves interior nodes by amplitude element lengths along a half
// sine, the domain ends stay in place.
func DisplaceNodes(x []float64, xmin, xmax, amplitude float64, K int) (xn []float64) {
	var (
		L = xmax - xmin
		h = L / float64(K)
	)
	xn = make([]float64, len(x))
	for i, xx := range x {
		xn[i] = xx
		if xx <= xmin || xx >= xmax {
			continue
		}
		xn[i] += amplitude * h * math.Sin(math.Pi*(xx-xmin)/L)
	}
	return
}

func RunRemap1D(m1d *Remap1D, log *logrus.Logger) (res *RemapResult1D, err error) {
	var (
		rp  = m1d.Params
		rs  *DG1D.RemapSpace1D
		ra  *remap.RemapAdvector
		ic  Profile1D
		mid = 0.5 * (rp.XMin + rp.XMax)
	)
	if err = rp.Validate(); err != nil {
		return
	}
	if ic, err = InitialCondition(rp.InitType, rp.XMin, rp.XMax); err != nil {
		return
	}
	VX, EToV := DG1D.SimpleMesh1D(rp.XMin, rp.XMax, rp.Elements)
	if rs, err = DG1D.NewRemapSpace1D(rp.PolynomialOrder, VX, EToV, rp.NumQuadraturePoints()); err != nil {
		return
	}
	opts := remap.DefaultOptions()
	opts.CFL = rp.CFL
	opts.BoundsStencil = rp.BoundsStencil
	opts.LumpedProjection = rp.LumpedProjection
	opts.Verify = rp.Verify
	opts.ParallelDegree = rp.ParallelDegree
	opts.LevelSet = rp.LevelSet
	opts.Logger = log
	if ra, err = remap.NewRemapAdvector(rs, nil, opts); err != nil {
		return
	}

	x0 := rs.NodePositions()
	fields := remap.LagrangianFields{
		RhoDetJw: make([]float64, 0, rs.NumElements()*rs.NumQuadPoints()),
		Velocity: make([]float64, len(x0)),
		Energy:   make([]float64, rs.NumL2Dofs()),
	}
	xq := rs.QuadCoordinates()
	for k := 0; k < rs.NumElements(); k++ {
		var detJw []float64
		if _, detJw, err = rs.ElementQuadrature(k); err != nil {
			return
		}
		for q, w := range detJw {
			fields.RhoDetJw = append(fields.RhoDetJw, ic.Rho(xq[k*rs.NumQuadPoints()+q])*w)
		}
	}
	for i, x := range x0 {
		fields.Velocity[i] = ic.Velocity(x)
	}
	res = &RemapResult1D{X0: rs.DofCoordinates()}
	for i, x := range res.X0 {
		fields.Energy[i] = ic.Energy(x)
	}
	if rp.LevelSet {
		fields.Distance = make([]float64, len(x0))
		for i, x := range x0 {
			fields.Distance[i] = x - mid
		}
	}
	for _, m := range fields.RhoDetJw {
		res.MassBefore += m
	}
	if err = ra.InitFromLagr(x0, fields); err != nil {
		return
	}
	res.Rho0 = append([]float64{}, ra.State().Get(remap.BlockRho)...)

	x1 := DisplaceNodes(x0, rp.XMin, rp.XMax, rp.Displacement, rp.Elements)
	remapIt := func() error { return ra.ComputeAtNewPosition(x1) }
	if m1d.PerfCounters {
		if res.Instructions, err = countInstructions(remapIt); err != nil {
			return
		}
	} else if err = remapIt(); err != nil {
		return
	}
	res.Steps = ra.Steps()
	if err = ra.TransferToLagr(&res.Fields); err != nil {
		return
	}
	for _, m := range res.Fields.RhoDetJw {
		res.MassAfter += m
	}
	res.X1 = rs.DofCoordinates()
	res.Rho1 = append([]float64{}, ra.State().Get(remap.BlockRho)...)
	if res.RhoAvg1, err = rs.ElementAverages(res.Rho1); err != nil {
		return
	}
	res.RhoMin, res.RhoMax = math.Inf(1), math.Inf(-1)
	for _, r := range res.Rho1 {
		res.RhoMin, res.RhoMax = math.Min(res.RhoMin, r), math.Max(res.RhoMax, r)
	}
	return
}
