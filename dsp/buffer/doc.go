// Package buffer provides the planar multi-channel [AudioBuffer] consumed
// and produced by the mastering chain, plus a scratch-slice [Pool] for
// render passes that need temporary per-frame storage.
//
// Buffers handed to the chain are treated as read-only; every processing
// step allocates its output with [AudioBuffer.NewLike].
package buffer
