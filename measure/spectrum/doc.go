// Package spectrum computes fractional-octave band levels of a complete
// buffer for meter displays.
//
// The channels are averaged to mono, split into overlapping windowed FFT
// blocks and the averaged power spectrum is summed into bands centered on
// 1 kHz * 2^(k/n). Levels are dBFS RMS: a full-scale sine reads -3.01 dB in
// its band.
package spectrum
