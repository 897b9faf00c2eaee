// Package signal generates deterministic source signals for beamforming
// simulations: a voice-like harmonic talker, Gaussian noise, and helpers to
// mix them at a prescribed signal-to-noise ratio.
package signal
