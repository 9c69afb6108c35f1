package sod_shock_tube

import (
	"fmt"
	"math"

	"github.com/notargets/goale/utils"
)

// Sod is the exact Riemann solution of the Sod shock tube on [0,1] with the
// diaphragm at X0: rarefaction, contact and shock moving right.
type Sod struct {
	X0, Gamma          float64
	RhoL, PL, RhoR, PR float64
	PPost, VPost       float64 // Pressure and velocity between rarefaction and shock
	RhoPost, RhoMiddle float64 // Density right and left of the contact
	VShock             float64
	cL, mu2            float64
}

func NewSod() (s *Sod) {
	s = &Sod{
		X0: 0.5, Gamma: 1.4,
		RhoL: 1, PL: 1,
		RhoR: 0.125, PR: 0.1,
	}
	var (
		g = s.Gamma
	)
	s.mu2 = (g - 1) / (g + 1)
	s.cL = math.Sqrt(g * s.PL / s.RhoL)
	s.PPost = s.postPressure()
	s.VPost = s.rarefactionVelocity(s.PPost)
	s.RhoPost = s.RhoR * ((s.PPost / s.PR) + s.mu2) / (1 + s.mu2*(s.PPost/s.PR))
	s.VShock = s.VPost * (s.RhoPost / s.RhoR) / ((s.RhoPost / s.RhoR) - 1.)
	s.RhoMiddle = s.RhoL * math.Pow(s.PPost/s.PL, 1./g)
	return
}

// Waves returns the head and tail of the rarefaction, the contact and the shock at time t.
func (s *Sod) Waves(t float64) (x1, x2, x3, x4 float64) {
	c2 := s.cL - 0.5*(s.Gamma-1.)*s.VPost
	x1 = s.X0 - s.cL*t
	x2 = s.X0 + t*(s.VPost-c2)
	x3 = s.X0 + s.VPost*t
	x4 = s.X0 + s.VShock*t
	return
}

// At returns density, velocity, pressure and specific internal energy at x and time t.
func (s *Sod) At(x, t float64) (rho, u, p, e float64) {
	var (
		g              = s.Gamma
		x1, x2, x3, x4 = s.Waves(t)
	)
	switch {
	case t <= 0 && x < s.X0, x < x1:
		rho, p = s.RhoL, s.PL
	case t <= 0:
		rho, p = s.RhoR, s.PR
	case x1 <= x && x <= x2:
		c := s.mu2*((s.X0-x)/t) + (1.-s.mu2)*s.cL
		rho = s.RhoL * math.Pow(c/s.cL, 2/(g-1))
		p = s.PL * math.Pow(rho/s.RhoL, g)
		u = (1. - s.mu2) * ((x-s.X0)/t + s.cL)
	case x2 < x && x <= x3:
		rho, p, u = s.RhoMiddle, s.PPost, s.VPost
	case x3 < x && x <= x4:
		rho, p, u = s.RhoPost, s.PPost, s.VPost
	default:
		rho, p = s.RhoR, s.PR
	}
	e = p / ((g - 1.) * rho)
	return
}

// rarefactionVelocity is the flow speed behind a left rarefaction to pressure P.
func (s *Sod) rarefactionVelocity(P float64) float64 {
	g := s.Gamma
	return 2 * (s.cL / (g - 1)) * (1 - math.Pow(P/s.PL, (g-1)/(2*g)))
}

// shockVelocity is the flow speed behind a right moving shock of pressure P.
func (s *Sod) shockVelocity(P float64) float64 {
	return (P - s.PR) * math.Sqrt(utils.POW(1-s.mu2, 2)/(s.RhoR*(P+s.mu2*s.PR)))
}

// postPressure bisects for the pressure at which both waves give the same velocity.
func (s *Sod) postPressure() (P float64) {
	var (
		lo, hi = s.PR, s.PL
		f      = func(P float64) float64 { return s.shockVelocity(P) - s.rarefactionVelocity(P) }
	)
	if f(lo) > 0 || f(hi) < 0 {
		panic(fmt.Errorf("no post shock pressure in [%g,%g]", lo, hi))
	}
	for hi-lo > 1.e-15 {
		P = 0.5 * (lo + hi)
		if f(P) < 0 {
			lo = P
		} else {
			hi = P
		}
	}
	P = 0.5 * (lo + hi)
	return
}
