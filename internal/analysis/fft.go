package analysis

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// FFT transforms a real periodic profile.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// IFFT is the normalised inverse of FFT.
func IFFT(coeffs []complex128) []complex128 {
	return fft.IFFT(coeffs)
}

// Freq returns the angular wavenumber 2πm/length for each FFT index m,
// folding indices at and above n/2 onto negative frequencies.
func Freq(n int, length float64) []float64 {
	k := make([]float64, n)
	for m := 0; m < n; m++ {
		s := m
		if m >= (n+1)/2 {
			s = m - n
		}
		k[m] = 2 * math.Pi * float64(s) / length
	}
	return k
}

// Conj returns the index of the frequency -m.
func Conj(m, n int) int {
	return (n - m) % n
}

// FFT3 transforms x-major data of shape dims along all three axes.
func FFT3(data []float64, dims [3]int) []complex128 {
	c := make([]complex128, len(data))
	for i, v := range data {
		c[i] = complex(v, 0)
	}
	transform3(c, dims, fft.FFT)
	return c
}

// IFFT3Real inverts FFT3 and keeps the real part.
func IFFT3Real(coeffs []complex128, dims [3]int) []float64 {
	c := make([]complex128, len(coeffs))
	copy(c, coeffs)
	transform3(c, dims, fft.IFFT)
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}

func transform3(c []complex128, dims [3]int, f func([]complex128) []complex128) {
	nx, ny, nz := dims[0], dims[1], dims[2]
	idx := func(i, j, k int) int { return (i*ny+j)*nz + k }

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			start := idx(i, j, 0)
			copy(c[start:start+nz], f(c[start:start+nz]))
		}
	}

	slice := make([]complex128, ny)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				slice[j] = c[idx(i, j, k)]
			}
			out := f(slice)
			for j := 0; j < ny; j++ {
				c[idx(i, j, k)] = out[j]
			}
		}
	}

	slice = make([]complex128, nx)
	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				slice[i] = c[idx(i, j, k)]
			}
			out := f(slice)
			for i := 0; i < nx; i++ {
				c[idx(i, j, k)] = out[i]
			}
		}
	}
}
