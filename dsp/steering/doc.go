// Package steering models microphone-array geometry and the per-frequency
// steering vectors of near-field point sources and far-field plane waves.
//
// Coordinates are meters in a right-handed frame. Azimuths are measured in
// the x-y plane: 0° points forward along +x and positive angles rotate left
// toward +y.
//
// Steering vectors follow the delay convention a_m(f) = exp(-j2πf·τ_m), where
// τ_m is the propagation delay to microphone m, so a beamformer output
// y = wᴴx with wᴴa = 1 passes the modelled source undistorted.
package steering
