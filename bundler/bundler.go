package bundler

import (
	"fmt"
	"sync"
	"time"

	"github.com/dspctl/scosc/osc"
)

// Sender is the subset of *transport.Transport a Bundler needs to deliver
// its flattened datagram. Defined locally so this package does not import
// transport, keeping the dependency direction one-way.
type Sender interface {
	Send(packet osc.Packet, peerName string) error
}

type entryKind int

const (
	entryMessage entryKind = iota
	entryBundler
)

type entry struct {
	offset float64
	kind   entryKind
	msg    osc.Message
	child  *Bundler
}

// Bundler is a mutable builder for a hierarchical OSC bundle (§4.5).
type Bundler struct {
	mu sync.Mutex

	base       *float64 // nil => wall-clock at flatten time
	passedTime float64
	entries    []entry
	finalized  bool
	scopeDepth int // re-entrancy depth of this bundler's own capture scope

	peer       string
	sendOnExit bool
	latency    time.Duration
	sender     Sender
}

// Option configures a Bundler at construction time.
type Option func(*Bundler)

// WithTimetag sets the bundler's base: values below the relative/absolute
// threshold (see osc.IsRelative) are added to wall-clock at flatten time;
// larger values are treated as absolute Unix seconds. Omitting this option
// anchors the bundler to wall-clock at flatten time.
func WithTimetag(seconds float64) Option {
	return func(b *Bundler) { b.base = &seconds }
}

// WithPeer sets the default destination Send uses when none is given
// explicitly.
func WithPeer(peer string) Option {
	return func(b *Bundler) { b.peer = peer }
}

// WithSendOnExit controls whether exiting the outermost capture scope
// automatically flattens and sends the bundle. Defaults to true.
func WithSendOnExit(send bool) Option {
	return func(b *Bundler) { b.sendOnExit = send }
}

// WithLatency sets the gap added to wall-clock when resolving a relative
// or omitted base, letting the caller decouple the engine's scheduled
// playback time from the moment the datagram is actually handed to the
// transport (§4.5, §4.6).
func WithLatency(d time.Duration) Option {
	return func(b *Bundler) { b.latency = d }
}

// New creates a Bundler. sender may be nil if the bundler is only used for
// inspection (Messages/ToRawOSC) rather than Send.
func New(sender Sender, opts ...Option) *Bundler {
	b := &Bundler{sender: sender, sendOnExit: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Wait advances the write-cursor ("passed_time") by delta seconds. delta
// must be non-negative; negative values are clamped to zero, keeping
// passed_time monotonically non-decreasing (§4.5 invariant).
func (b *Bundler) Wait(delta float64) *Bundler {
	if delta < 0 {
		delta = 0
	}
	b.mu.Lock()
	b.passedTime += delta
	b.mu.Unlock()
	return b
}

// Add appends a message at the bundler's current passed_time.
func (b *Bundler) Add(address string, args ...any) error {
	b.mu.Lock()
	offset := b.passedTime
	b.mu.Unlock()
	return b.AddAt(offset, address, args...)
}

// AddAt appends a message at max(offset, 0) relative seconds from the
// bundler's base (§4.5).
func (b *Bundler) AddAt(offset float64, address string, args ...any) error {
	m, err := osc.NewMessage(address, args...)
	if err != nil {
		return err
	}
	return b.addEntry(offset, entry{kind: entryMessage, msg: m})
}

// AddBundler appends a nested bundler at the current passed_time. Once
// added, mutating child further is undefined (§4.5): callers should treat
// it as consumed.
func (b *Bundler) AddBundler(child *Bundler) error {
	b.mu.Lock()
	offset := b.passedTime
	b.mu.Unlock()
	return b.AddBundlerAt(offset, child)
}

// AddBundlerAt appends a nested bundler at max(offset, 0) relative seconds.
func (b *Bundler) AddBundlerAt(offset float64, child *Bundler) error {
	return b.addEntry(offset, entry{kind: entryBundler, child: child})
}

func (b *Bundler) addEntry(offset float64, e entry) error {
	if offset < 0 {
		offset = 0
	}
	e.offset = offset

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return ErrFinalized
	}
	b.entries = append(b.entries, e)
	return nil
}

// Enter pushes b onto the calling goroutine's capture-scope stack so that
// code checking Current() redirects into it. Entering the same bundler
// recursively is allowed; only the outermost Exit auto-sends.
func (b *Bundler) Enter() *Bundler {
	b.mu.Lock()
	b.scopeDepth++
	b.mu.Unlock()
	scopePush(b)
	return b
}

// Exit pops the calling goroutine's capture-scope stack, restoring
// whatever bundler (if any) was active before Enter. If this was this
// bundler's own outermost scope and it was constructed with
// WithSendOnExit(true) (the default), the bundle is flattened and sent.
func (b *Bundler) Exit() error {
	scopePop()

	b.mu.Lock()
	b.scopeDepth--
	outermost := b.scopeDepth == 0
	b.mu.Unlock()

	if outermost && b.sendOnExit {
		_, err := b.Send("")
		return err
	}
	return nil
}

// Capture runs fn with b entered as the current capture scope, then exits
// the scope. fn's error, if any, takes precedence over an exit-time send
// error.
func (b *Bundler) Capture(fn func() error) error {
	b.Enter()
	fnErr := fn()
	exitErr := b.Exit()
	if fnErr != nil {
		return fnErr
	}
	return exitErr
}

// Messages returns the ordered flat list of (absolute_offset_from_root,
// message) pairs for inspection and testing (§4.5). Offsets are pure
// relative-seconds accounting; a descendant bundler with an absolute
// override base cannot be expressed this way, so its messages are
// reported at offsets counted from that absolute base value (Unix
// seconds) instead of from the root (use ToRawOSC for full fidelity in
// that case).
func (b *Bundler) Messages() []TimedMessage {
	var out []TimedMessage
	b.collectMessages(0, &out)
	return out
}

// TimedMessage is one (offset, message) pair as reported by Messages.
type TimedMessage struct {
	Offset  float64
	Message osc.Message
}

func (b *Bundler) collectMessages(base float64, out *[]TimedMessage) {
	b.mu.Lock()
	entries := append([]entry(nil), b.entries...)
	b.mu.Unlock()

	for _, e := range entries {
		switch e.kind {
		case entryMessage:
			*out = append(*out, TimedMessage{Offset: base + e.offset, Message: e.msg})
		case entryBundler:
			childBase := base + e.offset
			if e.child.base != nil && !osc.IsRelative(*e.child.base) {
				childBase = *e.child.base
			} else if e.child.base != nil {
				childBase += *e.child.base
			}
			e.child.collectMessages(childBase, out)
		}
	}
}

// ToRawOSC renders the complete nested OSC datagram anchored at the given
// reference time plus the construction-time latency. Unlike Send/Flatten,
// which read the live wall-clock, ToRawOSC takes its reference time
// explicitly so the same inputs always produce the same bytes (§4.5) —
// used primarily for deterministic tests.
func (b *Bundler) ToRawOSC(anchor time.Time) ([]byte, error) {
	pkt, err := b.flatten(anchor.Add(b.latency))
	if err != nil {
		return nil, err
	}
	return pkt.Bytes()
}

// Flatten renders the bundle tree into a single osc.Packet anchored at
// wall-clock-plus-latency, without sending it.
func (b *Bundler) Flatten() (osc.Packet, error) {
	return b.flatten(time.Now().Add(b.latency))
}

// Send flattens the bundle and hands it to the sender once. peer
// overrides the bundler's configured default peer if non-empty. Further
// calls are allowed and produce equivalent datagrams modulo wall-clock
// resolution (§4.5).
func (b *Bundler) Send(peer string) (osc.Packet, error) {
	pkt, err := b.Flatten()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.finalized = true
	b.mu.Unlock()

	if b.sender == nil {
		return pkt, nil
	}
	dest := peer
	if dest == "" {
		dest = b.peer
	}
	if dest == "" {
		return pkt, nil
	}
	if err := b.sender.Send(pkt, dest); err != nil {
		return pkt, fmt.Errorf("bundler: sending flattened bundle: %w", err)
	}
	return pkt, nil
}

// flatten is the pure recursive render described in §4.5: given an
// anchor wall-clock time, same entries always produce the same bytes.
func (b *Bundler) flatten(anchor time.Time) (osc.Packet, error) {
	rootT := resolveBase(b.base, anchor)
	return b.flattenWithBase(rootT, anchor)
}

func (b *Bundler) flattenWithBase(parentT osc.Timetag, anchor time.Time) (osc.Packet, error) {
	b.mu.Lock()
	entries := append([]entry(nil), b.entries...)
	b.mu.Unlock()

	bundle := osc.NewBundle(parentT)
	for _, e := range entries {
		switch e.kind {
		case entryMessage:
			child := osc.NewBundle(addOffset(parentT, e.offset))
			child.Append(e.msg)
			bundle.Append(child)
		case entryBundler:
			childT := resolveChildBase(e.child.base, parentT, e.offset, anchor)
			childPkt, err := e.child.flattenWithBase(childT, anchor)
			if err != nil {
				return nil, err
			}
			bundle.Append(childPkt)
		}
	}
	return bundle, nil
}

// resolveBase resolves a bundler's own base against an anchor wall-clock
// time: nil means "now" (the anchor itself).
func resolveBase(base *float64, anchor time.Time) osc.Timetag {
	if base == nil {
		return osc.NewTimetag(anchor)
	}
	return osc.FromSeconds(*base, anchor)
}

// resolveChildBase implements the nested-bundler timing rule of §4.5: a
// small (relative) child base is an additional offset on top of
// parentT+offset; a large (absolute) child base overrides entirely,
// ignoring parentT and offset.
func resolveChildBase(childBase *float64, parentT osc.Timetag, offset float64, anchor time.Time) osc.Timetag {
	if childBase == nil {
		return addOffset(parentT, offset)
	}
	if osc.IsRelative(*childBase) {
		return addOffset(parentT, offset+*childBase)
	}
	return osc.FromSeconds(*childBase, anchor)
}

// addOffset adds offsetSeconds to a timetag's wall-clock equivalent.
func addOffset(t osc.Timetag, offsetSeconds float64) osc.Timetag {
	return osc.NewTimetag(t.Time().Add(time.Duration(offsetSeconds * float64(time.Second))))
}
