package odom

import "gonum.org/v1/gonum/mat"

const (
	// stepDamping scales the residual on the right-hand side of the normal
	// equations. The eigenvalue threshold below is tied to this value and to
	// point distances being in metres.
	stepDamping = 0.05
	// eigenThreshold marks pose dimensions with eigenvalues of AᵀA below this
	// value as unobservable.
	eigenThreshold = 10.0
)

// solveNormalEquations solves (AᵀA)·x = Aᵀ·b by QR factorisation. It returns
// the update and AᵀA for the degeneracy analysis. A nil update with ok=false
// means the system could not be solved this iteration.
func solveNormalEquations(a *mat.Dense, b *mat.VecDense) (x *mat.VecDense, ata *mat.Dense, ok bool) {
	ata = &mat.Dense{}
	ata.Mul(a.T(), a)

	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var qr mat.QR
	qr.Factorize(ata)

	x = &mat.VecDense{}
	if err := qr.SolveVecTo(x, false, &atb); err != nil {
		// A Condition error still carries a usable (if ill-conditioned)
		// solution; the degeneracy projector handles those directions.
		if _, cond := err.(mat.Condition); !cond {
			return nil, ata, false
		}
	}
	return x, ata, true
}

// degeneracyProjector eigendecomposes AᵀA and builds the projector that
// confines solver updates to well-observed subspaces of the pose. Walking the
// eigenvalues in ascending order, each eigenvector whose eigenvalue falls
// below the threshold is zeroed; the walk stops at the first eigenvalue at or
// above it. Returns (nil, false) when no direction is degenerate.
func degeneracyProjector(ata *mat.Dense) (*mat.Dense, bool) {
	sym := mat.NewSymDense(6, nil)
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			sym.SetSym(i, j, ata.At(i, j))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return nil, false
	}
	vals := es.Values(nil)

	var vecs mat.Dense
	es.VectorsTo(&vecs)

	clipped := mat.DenseCopyOf(&vecs)
	degenerate := false
	for i := 0; i < 6; i++ {
		if vals[i] >= eigenThreshold {
			break
		}
		for j := 0; j < 6; j++ {
			clipped.Set(j, i, 0)
		}
		degenerate = true
	}
	if !degenerate {
		return nil, false
	}

	var proj mat.Dense
	proj.Mul(&vecs, clipped.T())
	return &proj, true
}
