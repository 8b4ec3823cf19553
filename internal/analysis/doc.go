// Package analysis provides the discrete Fourier machinery used by the
// slab model.
//
//   - [FFT], [IFFT]: 1D transforms of periodic profiles
//   - [Freq]: signed angular wavenumbers matching the FFT ordering
//   - [FFT3], [IFFT3Real]: axis-by-axis transforms of x-major 3D arrays
//
// Conventions follow the usual unnormalised forward transform
// X_m = Σ_n x_n exp(-2πi mn/N); the inverse carries the 1/N factor, so
// IFFT(FFT(x)) == x.
package analysis
