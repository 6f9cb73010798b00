package resource

import (
	"fmt"
	"regexp"
	"strings"
)

const extension = ".json"

var duplicateSuffix = regexp.MustCompile(`(?: \(\d+\))+(\.json)$`)

// NewContext validates and freezes comp, event and lang.
func NewContext(comp, event, lang string) (Context, error) {
	comp = strings.TrimSpace(comp)
	event = strings.TrimSpace(event)
	lang = strings.TrimSpace(lang)
	switch {
	case comp == "":
		return Context{}, fmt.Errorf("%w: comp cannot be empty", ErrInvalidContext)
	case event == "":
		return Context{}, fmt.Errorf("%w: event cannot be empty", ErrInvalidContext)
	case lang == "":
		return Context{}, fmt.Errorf("%w: lang cannot be empty", ErrInvalidContext)
	}
	return Context{comp: comp, event: event, lang: lang}, nil
}

// Build returns the identifier of kind within ctx. unit must be set exactly
// when kind is unit-scoped.
func Build(kind Kind, ctx Context, unit string) (Identifier, error) {
	l, ok := layouts[kind]
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if ctx.comp == "" || ctx.event == "" || ctx.lang == "" {
		return Identifier{}, fmt.Errorf("%w: context must be built with NewContext", ErrInvalidContext)
	}
	unit = strings.TrimSpace(unit)
	if l.unitScoped && unit == "" {
		return Identifier{}, fmt.Errorf("%w: %s", ErrUnitRequired, kind)
	}
	if !l.unitScoped && unit != "" {
		return Identifier{}, fmt.Errorf("%w: %s", ErrUnitNotAllowed, kind)
	}
	return Identifier{
		kind:  kind,
		comp:  ctx.comp,
		event: ctx.event,
		lang:  ctx.lang,
		unit:  unit,
	}, nil
}

// RemoteName is the resource name on the data service,
// e.g. GLO_EventGames~comp=OG2024~event=FBLMTEAM11------------~lang=ENG.json
func (i Identifier) RemoteName() string {
	l := layouts[i.kind]
	parts := make([]string, 0, len(l.segments)+1)
	parts = append(parts, string(i.kind))
	for _, s := range l.segments {
		parts = append(parts, s.key+"="+s.value(i))
	}
	return strings.Join(parts, "~") + extension
}

// LocalFilename is the name the resource is stored under.
func (i Identifier) LocalFilename() string {
	return NormalizeFilename(i.RemoteName())
}

func (i Identifier) String() string {
	return i.RemoteName()
}

// NormalizeFilename drops trailing duplication markers such as " (1)"
// in front of the .json extension. It is idempotent.
func NormalizeFilename(name string) string {
	return duplicateSuffix.ReplaceAllString(name, "$1")
}

// CanonicalizeEvent right-pads event with '-' to EventCodeWidth.
// Longer codes are returned unchanged.
func CanonicalizeEvent(event string) string {
	event = strings.TrimSpace(event)
	if event == "" || len(event) >= EventCodeWidth {
		return event
	}
	return event + strings.Repeat(eventPadChar, EventCodeWidth-len(event))
}

// Discipline is the three-letter discipline prefix of an event code.
func Discipline(event string) string {
	event = strings.TrimSpace(event)
	if len(event) < 3 {
		return ""
	}
	return strings.ToUpper(event[:3])
}
