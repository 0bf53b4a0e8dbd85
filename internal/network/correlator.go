package network

import (
	"context"
	"sync"
	"time"

	"zigbee-host/internal/serialization"
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zigbee"
)

// CommandResult is the outcome of a correlated request: a response command,
// an error, or neither (timeout).
type CommandResult struct {
	response zigbee.Command
	err      error
}

// Response returns the matched response command, or nil.
func (r CommandResult) Response() zigbee.Command { return r.response }

// Err returns the send failure, or nil.
func (r CommandResult) Err() error { return r.err }

// IsEmpty reports that no response arrived within the timeout.
func (r CommandResult) IsEmpty() bool { return r.response == nil && r.err == nil }

// IsSuccess reports that a response was matched.
func (r CommandResult) IsSuccess() bool { return r.response != nil && r.err == nil }

// BroadcastResponse is the sentinel response completing broadcast futures,
// which are not correlated with any inbound command.
type BroadcastResponse struct{}

func (*BroadcastResponse) ClusterID() uint16                          { return 0 }
func (*BroadcastResponse) TransactionID() uint8                       { return 0 }
func (*BroadcastResponse) SetTransactionID(uint8)                     {}
func (*BroadcastResponse) SourceAddress() zigbee.Address              { return nil }
func (*BroadcastResponse) SetSourceAddress(zigbee.Address)            {}
func (*BroadcastResponse) DestinationAddress() zigbee.Address         { return nil }
func (*BroadcastResponse) SetDestinationAddress(zigbee.Address)       {}
func (*BroadcastResponse) Serialize(*serialization.FieldSerializer) error {
	return nil
}
func (*BroadcastResponse) Deserialize(*serialization.FieldDeserializer) error {
	return nil
}

// Future is a single-assignment result cell. It is completed exactly once,
// by a matched response, by request expiry, or by a send failure.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	result    CommandResult
	completed bool
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// complete sets the result. It reports whether this call won the assignment.
func (f *Future) complete(r CommandResult) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		return false
	}
	f.result = r
	f.completed = true
	close(f.done)
	return true
}

// Done is closed when the future completes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Get blocks until the future completes.
func (f *Future) Get() CommandResult {
	<-f.done
	return f.result
}

// Wait blocks until the future completes or the context is cancelled.
func (f *Future) Wait(ctx context.Context) (CommandResult, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return CommandResult{}, ctx.Err()
	}
}

// pendingRequest is one in-flight correlation. Its mutex is the per-request
// barrier: it is held across the send so the matcher can never observe the
// request before its transaction id is final.
type pendingRequest struct {
	mu      sync.Mutex
	manager *Manager
	request zigbee.Command
	matcher ResponseMatcher
	future  *Future
	start   time.Time
}

// CommandReceived makes a pendingRequest a transient command listener.
func (p *pendingRequest) CommandReceived(received zigbee.Command) {
	p.mu.Lock()
	match := p.matcher.IsMatch(p.request, received)
	p.mu.Unlock()
	if !match {
		return
	}
	if p.future.complete(CommandResult{response: received}) {
		p.manager.removePending(p)
	}
}

// Unicast sends a command and returns a future completed by the first
// inbound command accepted by the matcher, by an eight-second expiry, or by
// a send failure.
func (m *Manager) Unicast(cmd zigbee.Command, matcher ResponseMatcher) *Future {
	p := &pendingRequest{
		manager: m,
		request: cmd,
		matcher: matcher,
		future:  newFuture(),
		start:   time.Now(),
	}
	m.addPending(p)

	p.mu.Lock()
	_, err := m.SendCommand(cmd)
	p.mu.Unlock()

	if err != nil {
		if p.future.complete(CommandResult{err: err}) {
			m.removePending(p)
		}
	}
	return p.future
}

// Broadcast sends a command fire-and-forget: the returned future is
// completed immediately with a BroadcastResponse sentinel.
func (m *Manager) Broadcast(cmd zigbee.Command) *Future {
	f := newFuture()
	if _, err := m.SendCommand(cmd); err != nil {
		f.complete(CommandResult{err: err})
	} else {
		f.complete(CommandResult{response: &BroadcastResponse{}})
	}
	return f
}

// Send routes a ZCL command to a destination, choosing broadcast for groups
// and a matched unicast otherwise.
func (m *Manager) Send(destination zigbee.Address, cmd zcl.Command) *Future {
	cmd.SetDestinationAddress(destination)
	if destination.IsGroup() {
		return m.Broadcast(cmd)
	}
	return m.Unicast(cmd, ZclResponseMatcher{})
}

// addPending registers a correlation and opportunistically expires stale
// ones.
func (m *Manager) addPending(p *pendingRequest) {
	expired := m.takeExpired(time.Now())
	m.pendingMu.Lock()
	m.pending[p] = struct{}{}
	m.pendingMu.Unlock()

	m.expire(expired)
	m.AddCommandListener(p)
}

func (m *Manager) removePending(p *pendingRequest) {
	m.pendingMu.Lock()
	delete(m.pending, p)
	m.pendingMu.Unlock()
	m.RemoveCommandListener(p)
}

// takeExpired removes and returns every pending request older than the
// request timeout.
func (m *Manager) takeExpired(now time.Time) []*pendingRequest {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	var expired []*pendingRequest
	for p := range m.pending {
		if now.Sub(p.start) > m.requestTimeout {
			expired = append(expired, p)
			delete(m.pending, p)
		}
	}
	return expired
}

// expire completes expired requests with an empty result, meaning "no
// response".
func (m *Manager) expire(expired []*pendingRequest) {
	for _, p := range expired {
		p.future.complete(CommandResult{})
		m.RemoveCommandListener(p)
	}
}

const sweepInterval = 100 * time.Millisecond

// startSweeper runs the dedicated expiry sweep so futures complete close to
// the timeout bound even when no new requests arrive.
func (m *Manager) startSweeper() {
	m.pendingMu.Lock()
	if m.sweepDone != nil {
		m.pendingMu.Unlock()
		return
	}
	done := make(chan struct{})
	m.sweepDone = done
	m.pendingMu.Unlock()

	m.sweepWg.Add(1)
	go func() {
		defer m.sweepWg.Done()
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				m.expire(m.takeExpired(now))
			}
		}
	}()
}

func (m *Manager) stopSweeper() {
	m.pendingMu.Lock()
	done := m.sweepDone
	m.sweepDone = nil
	m.pendingMu.Unlock()
	if done != nil {
		close(done)
	}
	m.sweepWg.Wait()
}
