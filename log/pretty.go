package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles are bound to the
// handler's output so that colors are only emitted to terminals.
type palette struct {
	key, str, num, boolean, time, null lipgloss.Style
	levels                             map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:     fg("8"),
		str:     fg("6"),
		num:     fg("3"),
		boolean: fg("2"),
		time:    fg("4"),
		null:    fg("8"),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("5"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3").Bold(true),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

// level returns the style of the highest defined level not above l.
func (p *palette) level(l slog.Level) lipgloss.Style {
	style := p.levels[slog.Level(LevelTrace)]

	for _, defined := range levels {
		if slog.Level(defined) <= l {
			style = p.levels[slog.Level(defined)]
		}
	}

	return style
}

// prettyHandler writes human-oriented records: a single line of key=value
// pairs for [FormatText], or an indented object for [FormatJSON].
// Nested groups are flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	style  *palette
	mu     *sync.Mutex
	w      io.Writer
	prefix string      // dotted group path applied to new attributes
	attrs  []slog.Attr // attributes from WithAttrs, keys already prefixed
	groups []string    // open groups, for ReplaceAttr
}

func newPrettyHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		style:  newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = h.flatten(c.attrs, h.prefix, h.groups, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	}

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			builtin = append(builtin,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin = append(builtin, slog.String(slog.MessageKey, r.Message))

	for _, a := range builtin {
		if a.Key == slog.TimeKey && r.Time.IsZero() {
			continue
		}

		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, h.prefix, h.groups, a)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeObject(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// flatten resolves a and appends it, or each of its group members, to dst
// with dotted keys.
func (h *prettyHandler) flatten(
	dst []slog.Attr,
	prefix string,
	groups []string,
	a slog.Attr,
) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if len(members) == 0 {
			return dst
		}

		if a.Key != "" {
			prefix += a.Key + "."
			groups = append(slices.Clip(groups), a.Key)
		}

		for _, m := range members {
			dst = h.flatten(dst, prefix, groups, m)
		}

		return dst
	}

	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return dst
	}

	a.Key = prefix + a.Key

	return append(dst, a)
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(a, escape))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.value(a, strconv.Quote))

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

// value renders the value of a styled by its kind. Textual values are passed
// through quote first.
func (h *prettyHandler) value(a slog.Attr, quote func(string) string) string {
	v := a.Value

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if a.Key == slog.LevelKey {
			return h.style.level(slog.Level(ParseLevel(s))).Render(quote(s))
		}

		return h.style.str.Render(quote(s))

	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		return h.style.boolean.Render(strconv.FormatBool(v.Bool()))

	case slog.KindDuration:
		return h.style.num.Render(quote(v.Duration().String()))

	case slog.KindTime:
		return h.style.time.Render(quote(v.Time().Format(time.RFC3339)))

	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			return h.style.null.Render("null")

		case slog.Level:
			return h.style.level(x).Render(quote(strings.ToUpper(Level(x).String())))

		case error:
			return h.style.str.Render(quote(x.Error()))
		}
	}

	return h.style.str.Render(quote(fmt.Sprint(v.Any())))
}

// escape quotes s if it would break the line of a text record.
func escape(s string) string {
	if strings.ContainsAny(s, "\n\r\t") {
		return strconv.Quote(s)
	}

	return s
}
