package ui

import (
	"fmt"
	"io"
	"sync"
)

// Printer is the categorized console every stage reports through.
type Printer interface {
	Section(title string)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Pass(format string, args ...any)
	Fail(format string, args ...any)
}

// Console prints prefixed, styled lines to a writer.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Section(title string) {
	c.println("")
	c.println(sectionStyle.Render(title))
}

func (c *Console) Info(format string, args ...any) {
	c.line(infoStyle.Render("[INFO]"), format, args...)
}

func (c *Console) Warn(format string, args ...any) {
	c.line(warnStyle.Render("[WARN]"), format, args...)
}

func (c *Console) Error(format string, args ...any) {
	c.line(errorStyle.Render("[ERROR]"), format, args...)
}

func (c *Console) Pass(format string, args ...any) {
	c.line(passStyle.Render("[PASS]"), format, args...)
}

func (c *Console) Fail(format string, args ...any) {
	c.line(errorStyle.Render("[FAIL]"), format, args...)
}

// Severity renders text in the style of a report severity class.
func Severity(class, text string) string {
	style, ok := severityStyles[class]
	if !ok {
		return text
	}
	return style.Render(text)
}

func (c *Console) line(prefix, format string, args ...any) {
	c.println(prefix + " " + fmt.Sprintf(format, args...))
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// Discard is a Printer that drops everything.
var Discard Printer = NewConsole(io.Discard)
