package alloc

// ClientRanges holds the four ID sub-ranges assigned to one client of the
// engine, derived from the handshake's client_id and max_logins (§4.7):
// each client gets an equal slice of the node-ID space (and similarly for
// the other three spaces) so concurrent clients sharing the engine cannot
// collide.
type ClientRanges struct {
	NodeIDs       *Allocator
	BufferIDs     *Allocator
	AudioBusIDs   *Allocator
	ControlBusIDs *Allocator
}

// Space bounds for the four ID kinds, matching the engine's reserved
// ranges: node IDs span the full 31-bit non-negative int32 range; buffer,
// audio-bus and control-bus IDs span 16 bits; audio-bus IDs start above
// the hardware I/O buses; control buses have no reserved prefix.
const (
	maxNodeID       = 1<<31 - 1
	maxBufferID     = 1<<16 - 1
	maxControlBusID = 1<<16 - 1
	maxAudioBusID   = 1<<16 - 1
)

// NewClientRanges partitions the four ID spaces into maxLogins equal
// slices and returns the slice for clientID (0-indexed). hardwareBuses is
// the count of audio buses reserved for hardware I/O (the audio-bus
// allocator starts above them, §4.4).
func NewClientRanges(clientID, maxLogins, hardwareBuses int) ClientRanges {
	nodeLow, nodeHigh := subRange(0, maxNodeID, clientID, maxLogins)
	bufLow, bufHigh := subRange(0, maxBufferID, clientID, maxLogins)
	cbusLow, cbusHigh := subRange(0, maxControlBusID, clientID, maxLogins)
	abusLow, abusHigh := subRange(hardwareBuses, maxAudioBusID, clientID, maxLogins)

	return ClientRanges{
		NodeIDs:       New(nodeLow, nodeHigh),
		BufferIDs:     New(bufLow, bufHigh),
		ControlBusIDs: New(cbusLow, cbusHigh),
		AudioBusIDs:   New(abusLow, abusHigh),
	}
}

// subRange divides [low, high] into n equal (floor-sized) slices and
// returns the i-th slice, 0-indexed. The last slice absorbs any remainder.
func subRange(low, high, i, n int) (int, int) {
	if n <= 1 {
		return low, high
	}
	span := high - low + 1
	size := span / n
	start := low + i*size
	end := start + size - 1
	if i == n-1 {
		end = high
	}
	return start, end
}
