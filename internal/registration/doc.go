// Package registration validates visitor forms and drives the submit, reset
// and join actions of the widget.
package registration
