package analysis

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFTRoundTrip(t *testing.T) {
	data := []float64{1, 3, -2, 0.5, 4, 7, -1}

	back := IFFT(FFT(data))
	for i := range data {
		if math.Abs(real(back[i])-data[i]) > 1e-12 || math.Abs(imag(back[i])) > 1e-12 {
			t.Errorf("index %d: expected %f, got %v", i, data[i], back[i])
		}
	}
}

func TestFFTHermitian(t *testing.T) {
	data := []float64{0.1, 2, 3, -4, 5, 1}
	c := FFT(data)
	n := len(data)

	for m := range c {
		if cmplx.Abs(c[m]-cmplx.Conj(c[Conj(m, n)])) > 1e-12 {
			t.Errorf("coefficient %d is not the conjugate of %d", m, Conj(m, n))
		}
	}
}

func TestFreq(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{4, []float64{0, 1, -2, -1}},
		{5, []float64{0, 1, 2, -2, -1}},
		{1, []float64{0}},
	}

	for _, tt := range tests {
		k := Freq(tt.n, 2*math.Pi)
		for i := range tt.want {
			if math.Abs(k[i]-tt.want[i]) > 1e-12 {
				t.Errorf("n=%d: Freq[%d] = %f, want %f", tt.n, i, k[i], tt.want[i])
			}
		}
	}
}

func TestFFT3RoundTrip(t *testing.T) {
	dims := [3]int{3, 4, 5}
	data := make([]float64, 60)
	for i := range data {
		data[i] = math.Sin(float64(i)) + float64(i%7)
	}

	back := IFFT3Real(FFT3(data, dims), dims)
	for i := range data {
		if math.Abs(back[i]-data[i]) > 1e-10 {
			t.Fatalf("index %d: expected %f, got %f", i, data[i], back[i])
		}
	}
}

func TestFFT3PlaneWave(t *testing.T) {
	dims := [3]int{4, 4, 4}
	data := make([]float64, 64)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				data[(i*4+j)*4+k] = math.Cos(2 * math.Pi * float64(j) / 4)
			}
		}
	}

	c := FFT3(data, dims)
	// cos along y puts half the weight on (0, ±1, 0).
	want := complex(32, 0)
	if cmplx.Abs(c[(0*4+1)*4+0]-want) > 1e-9 || cmplx.Abs(c[(0*4+3)*4+0]-want) > 1e-9 {
		t.Errorf("expected %v at (0,±1,0), got %v and %v", want, c[4], c[12])
	}
	if cmplx.Abs(c[0]) > 1e-9 {
		t.Errorf("expected zero mean, got %v", c[0])
	}
}
