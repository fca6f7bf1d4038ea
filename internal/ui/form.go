package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/queuecall/internal/registration"
)

type fieldID int

const (
	fieldFirstName fieldID = iota
	fieldLastName
	fieldPhone
	fieldEmail
	fieldIdentifier
)

type formField struct {
	id       fieldID
	label    string
	optional bool
	input    textinput.Model
}

// formModel is the registration form: one text input per visitor field.
type formModel struct {
	fields []formField
	focus  int
}

func newForm(requireIdentifier bool) formModel {
	specs := []struct {
		id          fieldID
		label       string
		placeholder string
		limit       int
	}{
		{fieldFirstName, "Nombre", "Ana", 60},
		{fieldLastName, "Apellido", "Pérez", 60},
		{fieldPhone, "Teléfono", "+54 11 5555 0000", 30},
		{fieldEmail, "Correo corporativo", "ana@empresa.com", 120},
		{fieldIdentifier, "DNI", "30111222", 20},
	}

	f := formModel{fields: make([]formField, 0, len(specs))}
	for _, s := range specs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = s.placeholder
		ti.CharLimit = s.limit
		ti.Width = 40

		field := formField{id: s.id, label: s.label, input: ti}
		if s.id == fieldIdentifier && !requireIdentifier {
			field.optional = true
			field.label = "DNI (opcional)"
		}
		f.fields = append(f.fields, field)
	}
	f.fields[0].input.Focus()
	return f
}

func (f *formModel) setFocus(i int) tea.Cmd {
	n := len(f.fields)
	i = ((i % n) + n) % n
	f.fields[f.focus].input.Blur()
	f.focus = i
	return f.fields[i].input.Focus()
}

func (f *formModel) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *formModel) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// update forwards msg to the focused input.
func (f *formModel) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *formModel) set(id fieldID, value string) {
	for i := range f.fields {
		if f.fields[i].id == id {
			f.fields[i].input.SetValue(value)
		}
	}
}

func (f formModel) value(id fieldID) string {
	for _, field := range f.fields {
		if field.id == id {
			return field.input.Value()
		}
	}
	return ""
}

// values returns the raw form input; registration normalises it.
func (f formModel) values() registration.Form {
	return registration.Form{
		FirstName:  f.value(fieldFirstName),
		LastName:   f.value(fieldLastName),
		Phone:      f.value(fieldPhone),
		Email:      f.value(fieldEmail),
		Identifier: f.value(fieldIdentifier),
	}
}

// clear empties every input and focuses the first one.
func (f *formModel) clear() tea.Cmd {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
	return f.setFocus(0)
}

func (f formModel) view(styles Styles, submitting bool, errMsg string) string {
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Registro para videollamada"))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		label := styles.Label
		if i == f.focus {
			label = styles.FocusedLabel
		}
		b.WriteString(label.Render(field.label))
		b.WriteString(field.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if submitting {
		b.WriteString(styles.ButtonBusy.Render("Enviando..."))
	} else {
		b.WriteString(styles.Button.Render("Registrarme"))
	}
	if errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.DangerText.Render(errMsg))
	}
	return styles.Box.Render(b.String())
}
