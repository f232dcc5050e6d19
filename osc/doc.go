/*
Package osc implements the OSC 1.0 binary wire format: messages, bundles,
timetags and the typed argument union used to build and parse them.

Encoding follows the Open Sound Control 1.0 Specification
(http://opensoundcontrol.org/spec-1_0): addresses and strings are padded to a
4-byte boundary with at least one NUL, a bundle is the literal "#bundle"
followed by an 8-byte timetag and size-prefixed elements, and each message
carries a type-tag string ahead of its argument payload.
*/
package osc
