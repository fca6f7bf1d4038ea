package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/five82/queuecall/internal/config"
	"github.com/five82/queuecall/internal/prefs"
	"github.com/five82/queuecall/internal/registration"
	"github.com/five82/queuecall/internal/ui"
	"github.com/five82/queuecall/internal/vqueue"
)

var (
	// ErrNothingToResume is returned by Resume when no turn has been issued yet.
	ErrNothingToResume = errors.New("no turn to resume")
	// ErrInputClosed is returned when the input stream ends while a field is prompted.
	ErrInputClosed = errors.New("input closed")
)

const inlineCommands = "Comandos: [j] unirse a la videollamada  [n] nuevo registro  [q] salir"

// sessionFlow is the part of the registration flow the inline session drives.
type sessionFlow interface {
	Submit(ctx context.Context, form registration.Form) error
	Join() (string, error)
	Reset()
}

// session runs the inline surface: prompts for missing fields, then reads
// one-letter commands while the turn is monitored.
type session struct {
	flow              sessionFlow
	in                <-chan string
	out               io.Writer
	requireIdentifier bool
}

func runInline(ctx context.Context, cfg config.Config, opts Options, form registration.Form, resume *vqueue.TurnSnapshot) error {
	userPrefs, _ := prefs.Load(opts.PrefsPath)
	presenter := ui.NewInline(opts.Stdout, userPrefs.Theme)

	var console io.Writer
	if opts.Debug {
		console = opts.Stderr
	}
	rt, err := newRuntime(ctx, cfg, opts, presenter, console)
	if err != nil {
		return err
	}
	defer rt.Close()

	s := &session{
		flow:              rt.flow,
		in:                readLines(ctx, opts.Stdin),
		out:               opts.Stdout,
		requireIdentifier: cfg.RequireIdentifier,
	}

	if resume != nil {
		if err := rt.flow.Watch(ctx, *resume); err != nil {
			return fmt.Errorf("watch %s: %w", resume.Code, err)
		}
	} else {
		if err := s.enroll(ctx, form); err != nil {
			return err
		}
	}
	return s.loop(ctx)
}

// enroll submits form and, while the submission is rejected, prompts for a
// fresh one. When input ends after a rejection the rejection is returned.
func (s *session) enroll(ctx context.Context, form registration.Form) error {
	var rejected error
	for {
		err := s.register(ctx, form)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrInputClosed) && rejected != nil:
			return rejected
		case errors.Is(err, ErrInputClosed), ctx.Err() != nil:
			return err
		}
		// The presenter has shown the reason.
		rejected = err
		form = registration.Form{}
	}
}

// readLines streams lines from r until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// register prompts for the fields form is missing and submits it.
func (s *session) register(ctx context.Context, form registration.Form) error {
	form, err := s.prompt(ctx, form)
	if err != nil {
		return err
	}
	return s.flow.Submit(ctx, form)
}

type promptField struct {
	label string
	value *string
}

// prompt asks for every required field that is still blank.
func (s *session) prompt(ctx context.Context, form registration.Form) (registration.Form, error) {
	fields := []promptField{
		{"Nombre", &form.FirstName},
		{"Apellido", &form.LastName},
		{"Teléfono", &form.Phone},
		{"Correo corporativo", &form.Email},
	}
	if s.requireIdentifier {
		fields = append(fields, promptField{"DNI", &form.Identifier})
	}

	for _, f := range fields {
		if strings.TrimSpace(*f.value) != "" {
			continue
		}
		fmt.Fprintf(s.out, "%s: ", f.label)
		line, err := s.readLine(ctx)
		if err != nil {
			return form, err
		}
		*f.value = line
	}
	return form, nil
}

func (s *session) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.in:
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	}
}

// loop handles commands until the visitor joins, quits or ctx is done. When
// input ends the turn keeps being monitored until ctx is cancelled.
func (s *session) loop(ctx context.Context) error {
	fmt.Fprintln(s.out, inlineCommands)
	in := s.in
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "":
			case "j":
				link, err := s.flow.Join()
				if err != nil {
					fmt.Fprintln(s.out, "La videollamada todavía no está disponible.")
					continue
				}
				fmt.Fprintf(s.out, "Abrí este enlace para unirte: %s\n", link)
				return nil
			case "n":
				s.flow.Reset()
				if err := s.register(ctx, registration.Form{}); err != nil {
					if errors.Is(err, ErrInputClosed) || errors.Is(err, context.Canceled) {
						return nil
					}
					// The presenter has shown the reason.
					fmt.Fprintln(s.out, inlineCommands)
				}
			case "q", "e":
				return nil
			default:
				fmt.Fprintln(s.out, inlineCommands)
			}
		}
	}
}
