// Package codec carries non-primitive scalar values through encoding and
// decoding: it boxes timestamps, sets, exceptions, and type references into
// tagged envelopes, and coerces caller-supplied primitive representations
// into declared target types.
package codec
