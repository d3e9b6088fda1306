// Package event defines the event values handed to compiled expressions,
// and the conversion from the JSON payloads the feed delivers.
package event

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/beatgridgo/internal/catalog"
)

// Event is one incoming DJ-link update, already decoded into the value
// model expressions operate on. Value is an object whose attributes the
// catalog's generators read; a null Value represents an absent event (the
// case nil-guarded expressions are compiled for).
type Event struct {
	Kind  catalog.Kind
	Value cty.Value
}

// Absent returns the absent-event sentinel for the given kind.
func Absent(kind catalog.Kind) Event {
	return Event{Kind: kind, Value: cty.NullVal(cty.DynamicPseudoType)}
}

// FromJSON decodes a feed payload into an Event. The payload must be a
// JSON object; its implied structural type becomes the event value's type.
func FromJSON(kind catalog.Kind, payload []byte) (Event, error) {
	ty, err := ctyjson.ImpliedType(payload)
	if err != nil {
		return Event{}, fmt.Errorf("event payload for kind %q: %w", kind, err)
	}
	val, err := ctyjson.Unmarshal(payload, ty)
	if err != nil {
		return Event{}, fmt.Errorf("event payload for kind %q: %w", kind, err)
	}
	if !val.Type().IsObjectType() {
		return Event{}, fmt.Errorf("event payload for kind %q: expected a JSON object, got %s", kind, val.Type().FriendlyName())
	}
	return Event{Kind: kind, Value: val}, nil
}

// DeviceNumber extracts the reporting device's number from the event value,
// used by the dispatcher to serialize per-device delivery. Returns 0 when
// the event is absent or carries no device_number attribute.
func (e Event) DeviceNumber() int {
	if e.Value.IsNull() || !e.Value.Type().IsObjectType() {
		return 0
	}
	if !e.Value.Type().HasAttribute("device_number") {
		return 0
	}
	num := e.Value.GetAttr("device_number")
	if num.IsNull() || !num.Type().Equals(cty.Number) {
		return 0
	}
	f, _ := num.AsBigFloat().Int64()
	return int(f)
}
