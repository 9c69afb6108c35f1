package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type RemapParameters struct {
	Title            string  `yaml:"Title"`
	PolynomialOrder  int     `yaml:"PolynomialOrder"`
	Elements         int     `yaml:"Elements"`
	XMin             float64 `yaml:"XMin"`
	XMax             float64 `yaml:"XMax"`
	CFL              float64 `yaml:"CFL"`
	BoundsStencil    int     `yaml:"BoundsStencil"`
	LumpedProjection bool    `yaml:"LumpedProjection"`
	Verify           bool    `yaml:"Verify"`
	ParallelDegree   int     `yaml:"ParallelDegree"`
	QuadraturePoints int     `yaml:"QuadraturePoints"` // Zero selects PolynomialOrder+2
	InitType         string  `yaml:"InitType"`         // step, sine, constant or sod
	Displacement     float64 `yaml:"Displacement"`     // Amplitude of the interior node motion
	LevelSet         bool    `yaml:"LevelSet"`
}

func NewRemapParameters() *RemapParameters {
	return &RemapParameters{
		Title:           "Remap",
		PolynomialOrder: 2,
		Elements:        20,
		XMin:            0,
		XMax:            1,
		CFL:             0.5,
		BoundsStencil:   1,
		ParallelDegree:  1,
		InitType:        "step",
		Displacement:    0.1,
	}
}

func (rp *RemapParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RemapParameters) Validate() (err error) {
	switch {
	case rp.PolynomialOrder < 0:
		err = fmt.Errorf("polynomial order must be non-negative, have %d", rp.PolynomialOrder)
	case rp.Elements < 1:
		err = fmt.Errorf("need at least one element, have %d", rp.Elements)
	case !(rp.XMax > rp.XMin):
		err = fmt.Errorf("domain [%g,%g] is empty", rp.XMin, rp.XMax)
	case rp.QuadraturePoints != 0 && rp.QuadraturePoints < rp.PolynomialOrder+1:
		err = fmt.Errorf("%d quadrature points are too few for order %d", rp.QuadraturePoints, rp.PolynomialOrder)
	case math.Abs(rp.Displacement) >= 0.5:
		err = fmt.Errorf("displacement %g of an element length would invert elements", rp.Displacement)
	}
	if err != nil {
		return
	}
	switch rp.InitType {
	case "step", "sine", "constant", "sod":
	default:
		err = fmt.Errorf("unknown InitType \"%s\", must be one of step, sine, constant or sod", rp.InitType)
	}
	return
}

// NumQuadraturePoints resolves the default quadrature size.
func (rp *RemapParameters) NumQuadraturePoints() int {
	if rp.QuadraturePoints == 0 {
		return rp.PolynomialOrder + 2
	}
	return rp.QuadraturePoints
}

func (rp *RemapParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", rp.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Elements\n", rp.Elements)
	fmt.Printf("[%8.5f,%8.5f]\t= Domain\n", rp.XMin, rp.XMax)
	fmt.Printf("%8.5f\t\t= CFL\n", rp.CFL)
	fmt.Printf("[%d]\t\t\t\t= Bounds Stencil\n", rp.BoundsStencil)
	fmt.Printf("[%d]\t\t\t\t= Quadrature Points\n", rp.NumQuadraturePoints())
	fmt.Printf("[%s]\t\t\t= InitType\n", rp.InitType)
	fmt.Printf("%8.5f\t\t= Displacement\n", rp.Displacement)
	fmt.Printf("[%v]\t\t\t= Lumped Projection\n", rp.LumpedProjection)
	fmt.Printf("[%v]\t\t\t= Verify\n", rp.Verify)
	fmt.Printf("[%v]\t\t\t= Level Set\n", rp.LevelSet)
}
