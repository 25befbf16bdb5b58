// Package stereo measures the stereo field of a two-channel buffer.
//
// [Analyze] reports the inter-channel correlation and the mid and side
// energies. [Goniometer] returns decimated mid/side points for a vector
// scope display.
package stereo
