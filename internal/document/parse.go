package document

import (
	"bytes"
	"encoding/json"
	"strings"
)

type rawRoot struct {
	Event json.RawMessage `json:"event"`
}

type rawEvent struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Phases          json.RawMessage `json:"phases"`
}

type rawPhase struct {
	Units json.RawMessage `json:"units"`
}

type rawUnit struct {
	Code             string          `json:"code"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"shortDescription"`
	Schedule         json.RawMessage `json:"schedule"`
}

type rawUnitSchedule struct {
	StartDate string       `json:"startDate"`
	Status    Label        `json:"status"`
	Start     []StartEntry `json:"start"`
}

// ParseEventGames extracts the unit list from a root event document.
//
// The document must be valid JSON with an `event` object. Anything below that
// is optional: a missing or malformed `phases` or `units` array contributes no
// units, and units without a code (or with a blank one) are dropped. Units keep
// document order.
func ParseEventGames(data []byte) (EventGames, error) {
	var root rawRoot
	if err := json.Unmarshal(data, &root); err != nil {
		return EventGames{}, &ParseError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidJSON,
		}
	}
	if !isObject(root.Event) {
		return EventGames{}, &ParseError{
			Message: "root document has no event object",
			Cause:   ErrCauseMissingEvent,
		}
	}

	var ev rawEvent
	if err := json.Unmarshal(root.Event, &ev); err != nil {
		return EventGames{}, &ParseError{
			Message: err.Error(),
			Cause:   ErrCauseMissingEvent,
		}
	}

	games := EventGames{
		Code:            ev.Code,
		Description:     ev.Description,
		LongDescription: ev.LongDescription,
	}
	for _, phaseRaw := range rawArray(ev.Phases) {
		var phase rawPhase
		if err := json.Unmarshal(phaseRaw, &phase); err != nil {
			continue
		}
		for _, unitRaw := range rawArray(phase.Units) {
			var ru rawUnit
			if err := json.Unmarshal(unitRaw, &ru); err != nil {
				continue
			}
			ru.Code = strings.TrimSpace(ru.Code)
			if ru.Code == "" {
				continue
			}
			games.Units = append(games.Units, toUnit(ru, games.Name()))
		}
	}
	return games, nil
}

func toUnit(ru rawUnit, eventName string) Unit {
	round := ru.ShortDescription
	if round == "" {
		round = ru.Description
	}
	u := Unit{
		Code:      ru.Code,
		Round:     round,
		EventName: eventName,
	}
	// the schedule only enriches the unit; a malformed one is ignored
	var sched rawUnitSchedule
	if !isObject(ru.Schedule) || json.Unmarshal(ru.Schedule, &sched) != nil {
		return u
	}
	u.Kickoff = sched.StartDate
	u.Status = sched.Status.Code
	for _, s := range sched.Start {
		order, _ := s.StartOrder.Int()
		u.Participants = append(u.Participants, Participant{
			StartOrder: order,
			Name:       s.Participant.Name,
		})
	}
	return u
}

// ParseHeadToHead decodes a result fragment. Some fragments wrap the payload
// under a top-level `results` object; both shapes are accepted.
func ParseHeadToHead(data []byte) (HeadToHead, error) {
	var wrapper struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return HeadToHead{}, &ParseError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidJSON,
		}
	}

	payload := data
	if isObject(wrapper.Results) {
		payload = wrapper.Results
	}

	var h2h HeadToHead
	if err := json.Unmarshal(payload, &h2h); err != nil {
		return HeadToHead{}, &ParseError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidResult,
		}
	}
	return h2h, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// rawArray returns nil for anything that is not a JSON array.
func rawArray(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil
	}
	return items
}
