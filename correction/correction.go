// Package correction implements the per-cycle offset correction that aligns
// a measured channel to a reference channel.
//
// For each engine cycle independently, the measured channel is interpolated
// onto the reference channel's axis, and the mean difference between the
// reference and the interpolated measured samples becomes that cycle's
// additive offset. Reference axis positions outside the measured axis range
// do not contribute; a cycle with no overlapping valid samples gets offset
// 0.0. The corrected data replaces the measured block's data in place.
package correction

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/avlkit/ifile/container"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/internal/options"
	"github.com/avlkit/ifile/internal/pool"
	"github.com/avlkit/ifile/ndim"
)

// Option configures an Engine during construction.
type Option = options.Option[*Engine]

// WithLogger sets the logger used for skip warnings and offset diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(e *Engine) error {
		if logger == nil {
			return fmt.Errorf("correction logger must not be nil")
		}
		e.logger = logger

		return nil
	})
}

// Engine applies offset corrections to a container's measured channels.
//
// The engine is stateless apart from its logger; one instance may correct
// any number of containers, but a container must not be read concurrently
// while a correction on it is in progress.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an offset-correction engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{logger: slog.Default()}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Correct aligns the measured channel to the reference channel and replaces
// the measured block's data in place. The axis is untouched.
//
// A missing measured or reference channel is a skip with a warning, not a
// failure. Both blocks must hold exactly 2-D data laid out as
// [samples, cycles] and share the same cycle count.
//
// Returns:
//   - error: errs.ErrNotTwoDimensional or errs.ErrCycleCountMismatch; nil on
//     success or skip
func (e *Engine) Correct(c *container.Container, measured, reference string) error {
	mb, err := c.Block(measured)
	if err != nil {
		e.logger.Warn("offset correction skipped, channel missing", "measured", measured, "reference", reference)
		return nil
	}
	rb, err := c.Block(reference)
	if err != nil {
		e.logger.Warn("offset correction skipped, channel missing", "measured", measured, "reference", reference)
		return nil
	}

	if mb.Data.NDim() != 2 || rb.Data.NDim() != 2 {
		return fmt.Errorf("%w: %q is %v and %q is %v, want [samples, cycles]",
			errs.ErrNotTwoDimensional, measured, mb.Data.Shape(), reference, rb.Data.Shape())
	}

	mSamples, mCycles := mb.Data.Dim(0), mb.Data.Dim(1)
	rSamples, rCycles := rb.Data.Dim(0), rb.Data.Dim(1)
	if mCycles != rCycles {
		return fmt.Errorf("%w: %q has %d cycles, %q has %d",
			errs.ErrCycleCountMismatch, measured, mCycles, reference, rCycles)
	}

	offsets := e.cycleOffsets(mb.Data.Data(), rb.Data.Data(), mb.Axis, rb.Axis, mSamples, rSamples, mCycles)

	e.logger.Debug("applied offset correction",
		"measured", measured,
		"reference", reference,
		"mean_offset", mean(offsets),
	)

	src := mb.Data.Data()
	corrected := make([]float64, len(src))
	for s := 0; s < mSamples; s++ {
		row := s * mCycles
		for cyc := 0; cyc < mCycles; cyc++ {
			corrected[row+cyc] = src[row+cyc] + offsets[cyc]
		}
	}

	arr, err := ndim.New([]int{mSamples, mCycles}, corrected)
	if err != nil {
		return err
	}

	return c.SetBlockData(measured, arr)
}

// Apply runs every correction pair registered in the container, in
// registration order. The batch aborts on the first shape or cycle-count
// error; pairs already applied keep their corrected data.
func (e *Engine) Apply(c *container.Container) error {
	for _, p := range c.CorrectionPairs() {
		if err := e.Correct(c, p.Measured, p.Reference); err != nil {
			return err
		}
	}

	return nil
}

// cycleOffsets computes the additive offset for each cycle: the mean of
// reference minus axis-interpolated measured over positions where both are
// valid, 0.0 when no position is.
func (e *Engine) cycleOffsets(mData, rData, mAxis, rAxis []float64, mSamples, rSamples, cycles int) []float64 {
	mCol, putM := pool.GetFloat64Slice(mSamples)
	defer putM()
	interp, putI := pool.GetFloat64Slice(rSamples)
	defer putI()

	offsets := make([]float64, cycles)
	for cyc := 0; cyc < cycles; cyc++ {
		for s := 0; s < mSamples; s++ {
			mCol[s] = mData[s*cycles+cyc]
		}

		interpInto(rAxis, mAxis, mCol, interp)

		sum := 0.0
		valid := 0
		for s := 0; s < rSamples; s++ {
			diff := rData[s*cycles+cyc] - interp[s]
			if math.IsNaN(diff) {
				continue
			}
			sum += diff
			valid++
		}

		if valid > 0 {
			offsets[cyc] = sum / float64(valid)
		}
	}

	return offsets
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range vals {
		sum += v
	}

	return sum / float64(len(vals))
}
