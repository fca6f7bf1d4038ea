package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/queuecall/internal/callurl"
	"github.com/five82/queuecall/internal/config"
	"github.com/five82/queuecall/internal/journal"
	"github.com/five82/queuecall/internal/prefs"
	"github.com/five82/queuecall/internal/registration"
	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

const (
	waitFor   = 5 * time.Second
	pollEvery = 10 * time.Millisecond
)

// syncBuffer is written by poll goroutines while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeQueue serves the enqueue and status endpoints.
type fakeQueue struct {
	mu       sync.Mutex
	enqueued int
	status   string
}

func (q *fakeQueue) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /queue/Q1/branch/B1/enqueue", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("x-api-token"))
		q.mu.Lock()
		q.enqueued++
		q.mu.Unlock()
		fmt.Fprint(w, `{"code":"A123","videoCallUrl":"https://v.example/room/1","jsonDetails":{"turn":7,"averageWaitingTime":4}}`)
	})
	mux.HandleFunc("GET /turn/code/A123", func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		status := q.status
		q.mu.Unlock()
		fmt.Fprintf(w, `{"status":%q,"videoCallUrl":"https://v.example/room/1","jsonDetails":{"averageWaitingTime":1.2}}`, status)
	})
	return mux
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIToken, "")
	t.Setenv(config.EnvJournalDSN, "")
	t.Setenv(config.EnvOTLPEndpoint, "")
}

func testOptions(t *testing.T, apiBase, surface string) (Options, *syncBuffer) {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`
api_base = %q
queue_id = "Q1"
branch_id = "B1"
api_token = "tok"
poll_interval_ms = 250
surface = %q
log_dir = %q
`, apiBase, surface, filepath.Join(dir, "logs"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	out := &syncBuffer{}
	return Options{
		ConfigPath: cfgPath,
		PrefsPath:  filepath.Join(dir, "prefs.toml"),
		Stdin:      strings.NewReader(""),
		Stdout:     out,
		Stderr:     &syncBuffer{},
	}, out
}

func TestRegisterInlineRevealsCall(t *testing.T) {
	queue := &fakeQueue{status: turn.StatusAnnounced}
	srv := httptest.NewServer(queue.handler(t))
	defer srv.Close()

	opts, out := testOptions(t, srv.URL, config.SurfaceMobile)
	// Phone and email come from the prompt.
	opts.Stdin = strings.NewReader("1155550000\nana@acme.com\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Register(ctx, opts, registration.Form{FirstName: "Ana", LastName: "Pérez"})
	}()

	link := "https://v.example/room/1?videocallUser=mobile"
	require.Eventually(t, func() bool { return strings.Contains(out.String(), link) }, waitFor, pollEvery)
	cancel()
	require.NoError(t, <-done)

	text := out.String()
	assert.Contains(t, text, "Teléfono: ")
	assert.Contains(t, text, "Correo corporativo: ")
	assert.NotContains(t, text, "Nombre: ", "prefilled fields are not prompted")
	assert.Contains(t, text, "A123")
	assert.Contains(t, text, turn.LabelAnnounced)
	assert.Equal(t, 1, strings.Count(text, link), "link revealed once")

	p, err := prefs.Load(opts.PrefsPath)
	require.NoError(t, err)
	require.NotNil(t, p.LastTurn)
	assert.Equal(t, "A123", p.LastTurn.Code)
	assert.Equal(t, 7, p.LastTurn.TurnNumber)
}

func TestRegisterRejectedFlagsWithoutInput(t *testing.T) {
	queue := &fakeQueue{}
	srv := httptest.NewServer(queue.handler(t))
	defer srv.Close()

	opts, out := testOptions(t, srv.URL, config.SurfaceMobile)
	err := Register(context.Background(), opts, registration.Form{
		FirstName: "Ana", LastName: "Pérez", Phone: "1", Email: "ana@gmail.com",
	})

	var verr *registration.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, out.String(), registration.MsgBlockedDomain)
	assert.Zero(t, queue.enqueued)
}

func TestRunRetriesAfterRejectedEmail(t *testing.T) {
	queue := &fakeQueue{status: turn.StatusAnnounced}
	srv := httptest.NewServer(queue.handler(t))
	defer srv.Close()

	opts, out := testOptions(t, srv.URL, config.SurfaceMobile)
	opts.Stdin = strings.NewReader("Ana\nP\n1\nana@gmail.com\nAna\nP\n1\nana@acme.com\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Run(ctx, opts) }()

	link := "https://v.example/room/1?videocallUser=mobile"
	require.Eventually(t, func() bool { return strings.Contains(out.String(), link) }, waitFor, pollEvery)
	cancel()
	require.NoError(t, <-done)

	text := out.String()
	assert.Contains(t, text, registration.MsgBlockedDomain)
	assert.Equal(t, 2, strings.Count(text, "Correo corporativo: "))
	queue.mu.Lock()
	defer queue.mu.Unlock()
	assert.Equal(t, 1, queue.enqueued)
}

func TestSessionEnrollRetriesAfterFailure(t *testing.T) {
	flow := &fakeFlow{submit: errors.New("rejected")}
	s, _ := newSession("Bea\nRuiz\n2\nbea@acme.com\n", flow, false)

	err := s.enroll(context.Background(), registration.Form{FirstName: "Ana", LastName: "P", Phone: "1", Email: "ana@acme.com"})
	require.EqualError(t, err, "rejected")
	require.Len(t, flow.forms, 2)
	assert.Equal(t, "Bea", flow.forms[1].FirstName)
}

func TestRegisterInputClosedWhilePrompting(t *testing.T) {
	opts, _ := testOptions(t, "http://127.0.0.1:1", config.SurfaceMobile)
	err := Register(context.Background(), opts, registration.Form{})
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestResumeWithoutTurn(t *testing.T) {
	opts, _ := testOptions(t, "http://127.0.0.1:1", config.SurfaceMobile)
	require.ErrorIs(t, Resume(context.Background(), opts), ErrNothingToResume)
}

func TestResumeWatchesRememberedTurn(t *testing.T) {
	queue := &fakeQueue{status: "IN_CALL"}
	srv := httptest.NewServer(queue.handler(t))
	defer srv.Close()

	opts, out := testOptions(t, srv.URL, config.SurfaceMobile)
	require.NoError(t, prefs.RememberTurn(opts.PrefsPath, vqueue.TurnSnapshot{Code: "A123", TurnNumber: 7}, time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Resume(ctx, opts) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "IN_CALL") }, waitFor, pollEvery)
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, queue.enqueued)
}

func TestStatusPrintsCurrentState(t *testing.T) {
	queue := &fakeQueue{status: turn.StatusAnnounced}
	srv := httptest.NewServer(queue.handler(t))
	defer srv.Close()

	opts, out := testOptions(t, srv.URL, config.SurfaceDesktop)
	require.NoError(t, Status(context.Background(), opts, " A123 "))

	text := out.String()
	assert.Contains(t, text, "A123")
	assert.Contains(t, text, turn.LabelAnnounced)
	assert.Contains(t, text, "1 min")
	assert.Contains(t, text, "https://v.example/room/1?videocallUser=mobile")
}

func TestStatusRequiresCode(t *testing.T) {
	opts, _ := testOptions(t, "http://127.0.0.1:1", config.SurfaceDesktop)
	require.Error(t, Status(context.Background(), opts, "  "))
}

func TestLoadConfigRejectsUnknownSurface(t *testing.T) {
	opts, _ := testOptions(t, "http://127.0.0.1:1", config.SurfaceDesktop)
	opts.Surface = "kiosk"
	_, err := loadConfig(opts.withDefaults())
	require.Error(t, err)
}

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		st       vqueue.TurnStatus
		label    string
		category turn.Category
	}{
		{vqueue.TurnStatus{}, turn.LabelWaiting, turn.CategoryPending},
		{vqueue.TurnStatus{Status: turn.StatusWaitingToBeCalled, HasStatus: true}, turn.LabelWaiting, turn.CategoryPending},
		{vqueue.TurnStatus{Status: turn.StatusAnnounced, HasStatus: true}, turn.LabelAnnounced, turn.CategoryActiveCall},
		{vqueue.TurnStatus{Status: "IN_CALL", HasStatus: true}, "IN_CALL", turn.CategoryActiveCall},
		{vqueue.TurnStatus{Status: "FINISHED", HasStatus: true}, "FINISHED", turn.CategoryTerminal},
	}
	for _, tc := range cases {
		label, category := statusLabel(tc.st)
		assert.Equal(t, tc.label, label)
		assert.Equal(t, tc.category, category)
	}
}

func TestPrintStatusWithTransitions(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)
	printStatus(&buf, "Slate", "A123",
		vqueue.TurnStatus{Status: turn.StatusAnnounced, HasStatus: true},
		callurl.New("mobile"),
		[]journal.Transition{{Code: "A123", From: "waiting", To: "announced", Status: "ANNOUNCED", RecordedAt: at}})

	text := buf.String()
	assert.Contains(t, text, "Estado remoto")
	assert.Contains(t, text, "Historial")
	assert.Contains(t, text, "2026-03-04 10:00:00  waiting → announced  ANNOUNCED")
	assert.NotContains(t, text, "Videollamada", "no link without a URL")
}

// fakeFlow drives session tests.
type fakeFlow struct {
	mu      sync.Mutex
	forms   []registration.Form
	submit  error
	resets  int
	joinURL string
}

func (f *fakeFlow) Submit(_ context.Context, form registration.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
	return f.submit
}

func (f *fakeFlow) Join() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joinURL == "" {
		return "", registration.ErrNoVideoCall
	}
	return f.joinURL, nil
}

func (f *fakeFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func newSession(input string, flow sessionFlow, requireIdentifier bool) (*session, *bytes.Buffer) {
	var out bytes.Buffer
	return &session{
		flow:              flow,
		in:                readLines(context.Background(), strings.NewReader(input)),
		out:               &out,
		requireIdentifier: requireIdentifier,
	}, &out
}

func TestSessionPromptsRequiredIdentifier(t *testing.T) {
	flow := &fakeFlow{}
	s, out := newSession("Ana\nPérez\n1\nana@acme.com\n30111222\n", flow, true)

	require.NoError(t, s.register(context.Background(), registration.Form{}))
	require.Len(t, flow.forms, 1)
	assert.Equal(t, "30111222", flow.forms[0].Identifier)
	assert.Contains(t, out.String(), "DNI: ")
}

func TestSessionJoinBeforeAndAfterReveal(t *testing.T) {
	flow := &fakeFlow{}
	s, out := newSession("j\n", flow, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.loop(ctx) }()

	// Input has ended; the session keeps running until cancelled.
	select {
	case err := <-done:
		t.Fatalf("loop returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "todavía no está disponible")

	flow.joinURL = "https://v.example/1?videocallUser=mobile"
	s, out = newSession("x\nj\n", flow, false)
	require.NoError(t, s.loop(context.Background()))
	assert.Contains(t, out.String(), "Abrí este enlace para unirte: https://v.example/1?videocallUser=mobile")
	assert.Equal(t, 2, strings.Count(out.String(), inlineCommands), "unknown command reprints help")
}

func TestSessionNewRegistration(t *testing.T) {
	flow := &fakeFlow{}
	s, _ := newSession("n\nBea\nRuiz\n2\nbea@acme.com\nq\n", flow, false)

	require.NoError(t, s.loop(context.Background()))
	assert.Equal(t, 1, flow.resets)
	require.Len(t, flow.forms, 1)
	assert.Equal(t, "Bea", flow.forms[0].FirstName)
}

func TestSessionNewRegistrationFailureKeepsLoop(t *testing.T) {
	flow := &fakeFlow{submit: errors.New("rejected")}
	s, out := newSession("n\nBea\nRuiz\n2\nbea@gmail.com\nq\n", flow, false)

	require.NoError(t, s.loop(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), inlineCommands))
}
