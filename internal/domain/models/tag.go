// internal/domain/models/tag.go
package models

// Tag is the closed set of notice categories. Unknown stored values parse
// to TagUnknown rather than being silently replaced, so data anomalies stay
// observable; rendering metadata falls back to the general category.
type Tag string

const (
	TagGeneral   Tag = "general"
	TagUrgent    Tag = "urgent"
	TagImportant Tag = "important"
	TagEvent     Tag = "event"
	TagUnknown   Tag = "unknown"
)

// AllTags lists the assignable tags, in display order.
var AllTags = []Tag{TagGeneral, TagUrgent, TagImportant, TagEvent}

// ParseTag maps a raw string to a Tag. Empty input defaults to general;
// anything not in the closed set is TagUnknown.
func ParseTag(raw string) Tag {
	switch Tag(raw) {
	case TagGeneral, TagUrgent, TagImportant, TagEvent:
		return Tag(raw)
	case "":
		return TagGeneral
	default:
		return TagUnknown
	}
}

// Assignable reports whether the tag may be written on a new notice.
func (t Tag) Assignable() bool {
	for _, v := range AllTags {
		if t == v {
			return true
		}
	}
	return false
}

// TagMeta carries the display metadata the clients render next to a tag.
type TagMeta struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

var tagMeta = map[Tag]TagMeta{
	TagGeneral:   {Label: "General", Emoji: "📋"},
	TagUrgent:    {Label: "Urgent", Emoji: "🚨"},
	TagImportant: {Label: "Important", Emoji: "⚠️"},
	TagEvent:     {Label: "Event", Emoji: "🎉"},
}

// Meta returns display metadata for the tag. Unknown tags render as general.
func (t Tag) Meta() TagMeta {
	if m, ok := tagMeta[t]; ok {
		return m
	}
	return tagMeta[TagGeneral]
}
