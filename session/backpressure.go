package session

// Default watermarks (component C6). LowWater is the level PollOutgoing
// resumes streaming at; HighWater is documentation of the level a host
// should signal at — the core never reads buffered_amount itself.
const (
	DefaultHighWater = 1 << 20   // 1 MiB
	DefaultLowWater  = 256 << 10 // 256 KiB
)

// backpressure tracks whether the file-transfer engine may enqueue another
// chunk. It is driven entirely by the host pushing NotifyHighWater /
// NotifyLowWater calls — it never polls a buffered_amount() getter, per the
// host's low_water_signal contract.
type backpressure struct {
	blocked bool
}

func (b *backpressure) notifyHighWater() { b.blocked = true }
func (b *backpressure) notifyLowWater()  { b.blocked = false }
func (b *backpressure) canSend() bool    { return !b.blocked }

// onTransportClosed unblocks so any caller awaiting drain observes the
// transport-closed outcome the next time it checks, rather than hanging.
func (b *backpressure) onTransportClosed() { b.blocked = false }
