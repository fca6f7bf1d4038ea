package registration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/queuecall/internal/callurl"
	"github.com/five82/queuecall/internal/state"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

const (
	waitFor   = 2 * time.Second
	pollEvery = 5 * time.Millisecond
)

func validForm() Form {
	return Form{
		FirstName: " Ana ",
		LastName:  "Pérez",
		Phone:     "+54 11 5555 0000",
		Email:     "ana@acme.com",
	}
}

func TestValidatorMissingFields(t *testing.T) {
	v := NewValidator(nil, false)

	err := v.Validate(Form{FirstName: "Ana", Email: "ana@acme.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonMissingFields, verr.Reason)
	assert.Equal(t, []string{"lastName", "phone"}, verr.Fields)
	assert.Equal(t, MsgMissingFields, verr.Message())
}

func TestValidatorMissingTakesPrecedenceOverDomain(t *testing.T) {
	v := NewValidator(nil, false)

	err := v.Validate(Form{FirstName: "Ana", Email: "ana@gmail.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonMissingFields, verr.Reason)
}

func TestValidatorBlockedDomains(t *testing.T) {
	v := NewValidator(nil, false)
	tests := []struct {
		email   string
		blocked bool
	}{
		{"ana@gmail.com", true},
		{"ana@GMAIL.COM", true},
		{"ana@hotmail.com", true},
		{"ana@yahoo.com", true},
		{"ana@outlook.com", true},
		{"ana@live.com", true},
		{"ana@acme.com", false},
		{"ana@mail.gmail.com.ar", false},
		{"no-at-sign", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := validForm().Normalize()
			f.Email = tt.email
			err := v.Validate(f)
			if !tt.blocked {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, ReasonBlockedDomain, verr.Reason)
			assert.Equal(t, MsgBlockedDomain, verr.Message())
		})
	}
}

func TestValidatorCustomDomainList(t *testing.T) {
	v := NewValidator([]string{" Example.org "}, false)
	assert.True(t, v.Blocked("x@example.org"))
	assert.False(t, v.Blocked("x@gmail.com"))

	open := NewValidator([]string{}, false)
	assert.False(t, open.Blocked("x@gmail.com"))
}

func TestValidatorRequiredIdentifier(t *testing.T) {
	f := validForm().Normalize()
	assert.NoError(t, NewValidator(nil, false).Validate(f))

	err := NewValidator(nil, true).Validate(f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"dni"}, verr.Fields)

	f.Identifier = "30111222"
	assert.NoError(t, NewValidator(nil, true).Validate(f))
}

type fakePresenter struct {
	mu     sync.Mutex
	events []string
	turns  []vqueue.TurnSnapshot
}

func (p *fakePresenter) has(e string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, got := range p.events {
		if got == e {
			return true
		}
	}
	return false
}

func (p *fakePresenter) add(e string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePresenter) ShowTurn(s vqueue.TurnSnapshot) {
	p.mu.Lock()
	p.turns = append(p.turns, s)
	p.mu.Unlock()
	p.add("turn")
}
func (p *fakePresenter) UpdateStatus(string, turn.Category) { p.add("status") }
func (p *fakePresenter) UpdateWaitingTime(int) { p.add("wait") }
func (p *fakePresenter) RevealVideoCall(string) { p.add("reveal") }
func (p *fakePresenter) ShowError(msg string) { p.add("error:" + msg) }
func (p *fakePresenter) Reset() { p.add("reset") }
func (p *fakePresenter) SetSubmitting(busy bool) {
	if busy {
		p.add("busy")
	} else {
		p.add("idle")
	}
}

type fakeEnqueuer struct {
	calls []vqueue.Registration
	snap  vqueue.TurnSnapshot
	err   error
	block chan struct{}
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, reg vqueue.Registration) (vqueue.TurnSnapshot, error) {
	e.calls = append(e.calls, reg)
	if e.block != nil {
		<-e.block
	}
	return e.snap, e.err
}

type fakeMonitor struct {
	started []vqueue.TurnSnapshot
	stops   int
	snap    state.Snapshot
	err     error
}

func (m *fakeMonitor) Start(_ context.Context, s vqueue.TurnSnapshot) error {
	m.started = append(m.started, s)
	return m.err
}
func (m *fakeMonitor) Stop() { m.stops++ }
func (m *fakeMonitor) Snapshot() state.Snapshot { return m.snap }

type fakeRecorder struct {
	codes []string
	err   error
}

func (r *fakeRecorder) RecordRegistration(_ context.Context, _ vqueue.Registration, s vqueue.TurnSnapshot) error {
	r.codes = append(r.codes, s.Code)
	return r.err
}

func newFlow(enq *fakeEnqueuer, mon *fakeMonitor, p *fakePresenter, rec Recorder) *Flow {
	return NewFlow(Deps{
		Enqueuer:  enq,
		Monitor:   mon,
		Presenter: p,
		Augmenter: callurl.New("mobile"),
		Recorder:  rec,
	})
}

func TestSubmitSuccess(t *testing.T) {
	enq := &fakeEnqueuer{snap: vqueue.TurnSnapshot{Code: "A123", TurnNumber: 7, VideoCallURL: "https://v/r", AverageWaitingTime: 12.7}}
	mon := &fakeMonitor{}
	p := &fakePresenter{}
	rec := &fakeRecorder{err: errors.New("db down")}
	var registered []string
	flow := newFlow(enq, mon, p, rec)
	flow.deps.OnRegistered = func(s vqueue.TurnSnapshot) { registered = append(registered, s.Code) }

	require.NoError(t, flow.Submit(context.Background(), validForm()))

	require.Len(t, enq.calls, 1)
	assert.Equal(t, "Ana", enq.calls[0].FirstName, "fields are trimmed")
	assert.Equal(t, []string{"busy", "turn", "idle"}, p.events)
	require.Len(t, p.turns, 1)
	assert.Equal(t, "https://v/r?videocallUser=mobile", p.turns[0].VideoCallURL)
	require.Len(t, mon.started, 1)
	assert.Equal(t, "A123", mon.started[0].Code)
	assert.Equal(t, []string{"A123"}, rec.codes, "journal failure does not fail the submit")
	assert.Equal(t, []string{"A123"}, registered)
}

func TestSubmitValidationFailureSkipsNetwork(t *testing.T) {
	enq := &fakeEnqueuer{}
	p := &fakePresenter{}
	flow := newFlow(enq, &fakeMonitor{}, p, nil)

	form := validForm()
	form.Email = "ana@gmail.com"
	err := flow.Submit(context.Background(), form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, enq.calls)
	assert.Equal(t, []string{"error:" + MsgBlockedDomain}, p.events)
}

func TestSubmitWhitespaceOnlyFieldsAreMissing(t *testing.T) {
	enq := &fakeEnqueuer{}
	p := &fakePresenter{}
	flow := newFlow(enq, &fakeMonitor{}, p, nil)

	form := validForm()
	form.LastName = "   "
	err := flow.Submit(context.Background(), form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"lastName"}, verr.Fields)
	assert.Empty(t, enq.calls)
	assert.Equal(t, []string{"error:" + MsgMissingFields}, p.events)
}

func TestSubmitEnqueueFailure(t *testing.T) {
	enq := &fakeEnqueuer{err: vqueue.ErrEnqueueFailed}
	mon := &fakeMonitor{}
	p := &fakePresenter{}
	flow := newFlow(enq, mon, p, nil)

	err := flow.Submit(context.Background(), validForm())
	require.ErrorIs(t, err, vqueue.ErrEnqueueFailed)
	assert.Equal(t, []string{"busy", "error:" + MsgEnqueueFailed, "idle"}, p.events)
	assert.Empty(t, mon.started)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	enq := &fakeEnqueuer{block: make(chan struct{}), snap: vqueue.TurnSnapshot{Code: "Z"}}
	p := &fakePresenter{}
	flow := newFlow(enq, &fakeMonitor{}, p, nil)

	done := make(chan error, 1)
	go func() { done <- flow.Submit(context.Background(), validForm()) }()
	require.Eventually(t, func() bool { return p.has("busy") }, waitFor, pollEvery)

	assert.ErrorIs(t, flow.Submit(context.Background(), validForm()), ErrSubmitInProgress)

	close(enq.block)
	require.NoError(t, <-done)
	assert.Len(t, enq.calls, 1)

	// Released after the first submission resolves.
	enq.block = nil
	require.NoError(t, flow.Submit(context.Background(), validForm()))
	assert.Len(t, enq.calls, 2)
}

func TestResetStopsMonitor(t *testing.T) {
	mon := &fakeMonitor{}
	p := &fakePresenter{}
	flow := newFlow(&fakeEnqueuer{}, mon, p, nil)

	flow.Reset()
	assert.Equal(t, 1, mon.stops)
	assert.Equal(t, []string{"reset"}, p.events)
}

func TestJoin(t *testing.T) {
	mon := &fakeMonitor{}
	flow := newFlow(&fakeEnqueuer{}, mon, &fakePresenter{}, nil)

	_, err := flow.Join()
	require.ErrorIs(t, err, ErrNoVideoCall)
	assert.Equal(t, 0, mon.stops)

	mon.snap.Turn = state.Turn{Code: "A1", Phase: turn.PhaseAnnounced, Revealed: true, VideoCallURL: "https://v?videocallUser=mobile"}
	link, err := flow.Join()
	require.NoError(t, err)
	assert.Equal(t, "https://v?videocallUser=mobile", link)
	assert.Equal(t, 1, mon.stops)
}

func TestWatchResumesWithoutEnqueue(t *testing.T) {
	enq := &fakeEnqueuer{}
	mon := &fakeMonitor{}
	p := &fakePresenter{}
	flow := newFlow(enq, mon, p, nil)

	snap := vqueue.TurnSnapshot{Code: "A123", TurnNumber: 7, VideoCallURL: "https://v/r"}
	require.NoError(t, flow.Watch(context.Background(), snap))

	assert.Empty(t, enq.calls)
	assert.Equal(t, []string{"turn"}, p.events)
	assert.Equal(t, "https://v/r?videocallUser=mobile", p.turns[0].VideoCallURL)
	require.Len(t, mon.started, 1)
	assert.Equal(t, "https://v/r", mon.started[0].VideoCallURL, "monitor augments on its own")
}

func TestWatchRequiresCode(t *testing.T) {
	mon := &fakeMonitor{}
	p := &fakePresenter{}
	flow := newFlow(&fakeEnqueuer{}, mon, p, nil)

	require.ErrorIs(t, flow.Watch(context.Background(), vqueue.TurnSnapshot{}), ErrNoTurnCode)
	assert.Empty(t, p.events)
	assert.Empty(t, mon.started)
}
