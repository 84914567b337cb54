package symgo

import "errors"

// Error kinds surfaced at the package boundary. Callers match them with
// errors.Is; everything the library returns wraps exactly one of these.
var (
	// ErrUnboundVariable is returned by Eval when a variable has no binding.
	ErrUnboundVariable = errors.New("symgo: unbound variable")

	// ErrDomain is returned by Eval when a function is applied outside its
	// real domain (ln of a non-positive real, asin outside [-1,1], x/0).
	ErrDomain = errors.New("symgo: domain error")

	// ErrNotPolynomial is returned by the solver when the residual cannot be
	// reduced to a polynomial in the unknown.
	ErrNotPolynomial = errors.New("symgo: not a polynomial")

	// ErrUnsupportedDegree is returned by the solver for polynomial degrees
	// with no closed-form dispatch (degree > 3 and no isolation path).
	ErrUnsupportedDegree = errors.New("symgo: unsupported degree")

	// ErrUnsupportedForm is returned by the solver when isolation cannot
	// invert a node (the variable in both base and exponent, a Mod, a
	// non-invertible function) or a cubic lacks numeric coefficients.
	ErrUnsupportedForm = errors.New("symgo: unsupported form")

	// ErrNoIntegrationRule is returned when the whole strategy chain is
	// exhausted without a match.
	ErrNoIntegrationRule = errors.New("symgo: no integration rule applies")

	// ErrInconsistentSystem is returned when elimination reduces an equation
	// to a nonzero constant equal to zero.
	ErrInconsistentSystem = errors.New("symgo: inconsistent system")

	// ErrDepthExceeded is the guard-rail error for runaway recursion in the
	// integration chain.
	ErrDepthExceeded = errors.New("symgo: recursion depth exceeded")

	// ErrNoConvergence is the guard-rail error for the system solver's
	// elimination-round cap.
	ErrNoConvergence = errors.New("symgo: elimination did not converge")
)

// zeroTol is the single epsilon used for every float zero test in the
// package: simplifier constant folds, solver discriminants, and the Cardano
// degenerate-branch guard all share it.
const zeroTol = 1e-9
