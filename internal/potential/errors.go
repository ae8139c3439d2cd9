package potential

import "errors"

// Model file errors. All are fatal at load time; the engine never
// retries a bad file.
var (
	// ErrHeader indicates a malformed or truncated header section.
	ErrHeader = errors.New("potential: malformed model header")

	// ErrDimension indicates beta_size disagrees with the descriptor
	// count derived from the header hyperparameters.
	ErrDimension = errors.New("potential: beta size does not match descriptor count")

	// ErrCoefficients indicates the coefficient block ended early or
	// contains an unparseable token.
	ErrCoefficients = errors.New("potential: bad coefficient block")

	// ErrAborted is returned on non-reading ranks when the reading rank
	// failed to load and cancelled the broadcast group-wide.
	ErrAborted = errors.New("potential: load aborted by reading rank")

	// ErrModelMismatch indicates two models that must share descriptor
	// hyperparameters disagree.
	ErrModelMismatch = errors.New("potential: model hyperparameters disagree")
)
