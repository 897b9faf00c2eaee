// Package snr measures signal-to-noise ratios of beamformer inputs and
// outputs when the target and noise components are known separately, as in
// simulations and listening tests with clean references.
//
// Ratios are reported in dB (10·log10 of a power ratio). Improvement is the
// output SNR minus the input SNR, so a positive value means the processing
// suppressed noise more than it attenuated the target.
package snr
