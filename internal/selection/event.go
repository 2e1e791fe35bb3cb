package selection

import (
	"encoding/json"
	"fmt"

	"github.com/verte-zerg/derdie/internal/model"
)

// Event is a user interaction. The concrete types are NoSelection,
// EndingClick, ExceptionClick and GenderAspectClick.
type Event interface {
	isEvent()
}

// NoSelection is a click that hit no bar.
type NoSelection struct{}

// EndingClick selects an ending bar.
type EndingClick struct {
	Label string
}

// ExceptionClick selects a bar of the exceptions view.
type ExceptionClick struct {
	Label string
}

// GenderAspectClick selects a gender column on the summary page. An empty
// Gender selects the total column.
type GenderAspectClick struct {
	Gender model.Gender
	Aspect Aspect
}

func (NoSelection) isEvent()       {}
func (EndingClick) isEvent()       {}
func (ExceptionClick) isEvent()    {}
func (GenderAspectClick) isEvent() {}

// Wire names of the event types.
const (
	TypeNone      = "none"
	TypeEnding    = "ending"
	TypeException = "exception"
	TypeGender    = "gender"
)

type wireEvent struct {
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
	Gender string `json:"gender,omitempty"`
	Aspect string `json:"aspect,omitempty"`
}

// EncodeEvent returns the JSON form of an event.
func EncodeEvent(ev Event) ([]byte, error) {
	var w wireEvent
	switch e := ev.(type) {
	case nil, NoSelection:
		w.Type = TypeNone
	case EndingClick:
		w = wireEvent{Type: TypeEnding, Label: e.Label}
	case ExceptionClick:
		w = wireEvent{Type: TypeException, Label: e.Label}
	case GenderAspectClick:
		w = wireEvent{Type: TypeGender, Gender: string(e.Gender), Aspect: string(e.Aspect)}
	default:
		return nil, fmt.Errorf("unknown event %T", ev)
	}
	return json.Marshal(w)
}

// DecodeEvent parses the JSON form of an event. An empty type is NoSelection.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return w.event()
}

// Envelope pairs a state with the event to apply to it.
type Envelope struct {
	State State
	Event Event
}

// UnmarshalJSON decodes the state and the wire form of the event.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		State State           `json:"state"`
		Event json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.State = raw.State
	e.Event = NoSelection{}
	if len(raw.Event) == 0 || string(raw.Event) == "null" {
		return nil
	}
	ev, err := DecodeEvent(raw.Event)
	if err != nil {
		return err
	}
	e.Event = ev
	return nil
}

func (w wireEvent) event() (Event, error) {
	switch w.Type {
	case "", TypeNone:
		return NoSelection{}, nil
	case TypeEnding:
		return EndingClick{Label: w.Label}, nil
	case TypeException:
		return ExceptionClick{Label: w.Label}, nil
	case TypeGender:
		g := model.Gender("")
		if w.Gender != "" && w.Gender != "total" {
			parsed, err := model.ParseGender(w.Gender)
			if err != nil {
				return nil, err
			}
			g = parsed
		}
		return GenderAspectClick{Gender: g, Aspect: Aspect(w.Aspect)}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", w.Type)
	}
}
