package resource

import "strings"

// Kind names a resource family on the data service.
type Kind string

const (
	// KindEventGames is the root event document listing every unit of an event.
	KindEventGames Kind = "GLO_EventGames"
	// KindHeadToHead is the per-unit head-to-head result document.
	KindHeadToHead Kind = "RES_ByRSC_H2H"
)

// EventCodeWidth is the fixed width of event codes in resource names.
const EventCodeWidth = 22

const eventPadChar = "-"

// segment is one key=value piece of a resource name.
type segment struct {
	key   string
	value func(Identifier) string
}

// layout describes how a kind spells its resource name.
type layout struct {
	unitScoped bool
	segments   []segment
}

var layouts = map[Kind]layout{
	KindEventGames: {
		unitScoped: false,
		segments: []segment{
			{key: "comp", value: func(i Identifier) string { return i.comp }},
			{key: "event", value: func(i Identifier) string { return CanonicalizeEvent(i.event) }},
			{key: "lang", value: func(i Identifier) string { return i.lang }},
		},
	},
	KindHeadToHead: {
		unitScoped: true,
		segments: []segment{
			{key: "comp", value: func(i Identifier) string { return i.comp }},
			{key: "disc", value: func(i Identifier) string { return Discipline(i.event) }},
			{key: "rscResult", value: func(i Identifier) string { return i.unit }},
			{key: "lang", value: func(i Identifier) string { return i.lang }},
		},
	},
}

// Kinds lists the recognized kinds.
func Kinds() []Kind {
	return []Kind{KindEventGames, KindHeadToHead}
}

// IsUnitScoped reports whether identifiers of kind carry a unit.
func (k Kind) IsUnitScoped() bool {
	return layouts[k].unitScoped
}

// Context scopes every request to one competition, event and language.
// It is immutable once built.
type Context struct {
	comp  string
	event string
	lang  string
}

func (c Context) Comp() string {
	return c.comp
}

// Event returns the event code as supplied.
func (c Context) Event() string {
	return c.event
}

// PaddedEvent returns the event code padded to EventCodeWidth.
func (c Context) PaddedEvent() string {
	return CanonicalizeEvent(c.event)
}

func (c Context) Lang() string {
	return c.lang
}

func (c Context) String() string {
	return strings.Join([]string{c.comp, c.event, c.lang}, "/")
}

// Identifier names one resource. It is comparable and two identifiers with
// equal fields denote the same resource.
type Identifier struct {
	kind  Kind
	comp  string
	event string
	lang  string
	unit  string
}

func (i Identifier) Kind() Kind {
	return i.kind
}

func (i Identifier) Comp() string {
	return i.comp
}

func (i Identifier) Event() string {
	return i.event
}

func (i Identifier) Lang() string {
	return i.lang
}

// Unit is empty for kinds that are not unit-scoped.
func (i Identifier) Unit() string {
	return i.unit
}
