// Package beamform computes and applies frequency-domain beamformer weights
// for a microphone array.
//
// Included solvers:
//   - SolveLCMV: static linearly-constrained minimum-variance weights with a
//     distortionless target and nulls toward interferers.
//   - DelayAndSum: static phase-aligning weights.
//   - MVDR: stateless per-bin minimum-variance distortionless solve.
//
// The adaptive path is driven by Processor, which per frame updates a
// mask-weighted CovarianceTracker, solves MVDR weights for every bin and
// applies them to that same frame. Frames are processed strictly in order;
// bins within a frame may be fanned out across workers.
//
// All weights follow the output convention y = wᴴx. Numerical fallbacks
// (pseudo-inverse on ill-conditioned matrices, skipped normalisation or
// muted bins on vanishing responses) are silent and counted in Diagnostics;
// only malformed configuration or input returns an error.
package beamform
