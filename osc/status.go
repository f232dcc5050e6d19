package osc

import "fmt"

// Status is the decoded payload of a "/status.reply" message: the eight
// scsynth status fields that follow the leading reserved int (§12; the
// field layout follows the engine's well-known positional status-reply
// contract). Arguments after the ninth are ignored.
type Status struct {
	UGens             int32
	Synths            int32
	Groups            int32
	SynthDefs         int32
	AvgCPU            float64
	PeakCPU           float64
	NominalSampleRate float64
	ActualSampleRate  float64
}

// DecodeStatus extracts a Status from the arguments of a "/status.reply"
// message. The first argument is a reserved int the engine always sends as
// 1; it is skipped.
func DecodeStatus(args []Arg) (Status, error) {
	if len(args) < 9 {
		return Status{}, fmt.Errorf("%w: /status.reply expected at least 9 arguments, got %d", ErrMalformedPacket, len(args))
	}
	ints := make([]int32, 0, 4)
	floats := make([]float64, 0, 4)
	for _, a := range args[1:9] {
		switch v := a.(type) {
		case Int:
			ints = append(ints, int32(v))
		case Float:
			floats = append(floats, float64(v))
		default:
			return Status{}, fmt.Errorf("%w: unexpected /status.reply argument type", ErrMalformedPacket)
		}
	}
	if len(ints) != 4 || len(floats) != 4 {
		return Status{}, fmt.Errorf("%w: /status.reply field layout mismatch", ErrMalformedPacket)
	}
	return Status{
		UGens:             ints[0],
		Synths:            ints[1],
		Groups:            ints[2],
		SynthDefs:         ints[3],
		AvgCPU:            floats[0],
		PeakCPU:           floats[1],
		NominalSampleRate: floats[2],
		ActualSampleRate:  floats[3],
	}, nil
}
