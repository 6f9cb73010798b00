package document

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EventGames is the part of the root event document the pipeline depends on.
type EventGames struct {
	Code            string
	Description     string
	LongDescription string
	Units           []Unit
}

// Name prefers the long description, like the upstream site header does.
func (e EventGames) Name() string {
	if e.LongDescription != "" {
		return e.LongDescription
	}
	return e.Description
}

type Unit struct {
	Code         string
	Round        string
	EventName    string
	Kickoff      string
	Status       string
	Participants []Participant
}

type Participant struct {
	StartOrder int
	Name       string
}

// Scalar holds a JSON value the upstream feed encodes either as a string or as
// a number (scores, bibs, start orders, minutes and entry values).
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	*s = Scalar(b)
	return nil
}

func (s Scalar) String() string {
	return string(s)
}

func (s Scalar) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// HeadToHead is a per-unit result fragment (RES_ByRSC_H2H).
type HeadToHead struct {
	Schedule      Schedule       `json:"schedule"`
	ExtendedInfos []ExtendedInfo `json:"extendedInfos"`
	Periods       []Period       `json:"periods"`
	Items         []Item         `json:"items"`
	PlayByPlay    []PlayByPlay   `json:"playByPlay"`
}

type Schedule struct {
	StartDate string       `json:"startDate"`
	Venue     Label        `json:"venue"`
	Location  Label        `json:"location"`
	Start     []StartEntry `json:"start"`
}

type Label struct {
	Code             string `json:"code"`
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
}

type StartEntry struct {
	StartOrder  Scalar `json:"startOrder"`
	Participant Named  `json:"participant"`
}

type Named struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type ExtendedInfo struct {
	Code  string `json:"ei_code"`
	Value Scalar `json:"ei_value"`
}

type Period struct {
	Code string      `json:"p_code"`
	Home PeriodScore `json:"home"`
	Away PeriodScore `json:"away"`
}

type PeriodScore struct {
	Score Scalar `json:"score"`
}

type Item struct {
	TeamCode         string       `json:"teamCode"`
	Participant      Named        `json:"participant"`
	EventUnitEntries []Entry      `json:"eventUnitEntries"`
	TeamCoaches      []TeamCoach  `json:"teamCoaches"`
	TeamAthletes     []TeamMember `json:"teamAthletes"`
}

type Entry struct {
	Code  string `json:"eue_code"`
	Value Scalar `json:"eue_value"`
}

type TeamCoach struct {
	Coach Named `json:"coach"`
}

type TeamMember struct {
	ParticipantCode  string  `json:"participantCode"`
	Bib              Scalar  `json:"bib"`
	Athlete          Named   `json:"athlete"`
	EventUnitEntries []Entry `json:"eventUnitEntries"`
}

type PlayByPlay struct {
	Actions []Action `json:"actions"`
}

type Action struct {
	Result      string             `json:"pbpa_Result"`
	Action      string             `json:"pbpa_Action"`
	When        Scalar             `json:"pbpa_When"`
	Period      string             `json:"pbpa_period"`
	Competitors []ActionCompetitor `json:"competitors"`
}

type ActionCompetitor struct {
	Code     string          `json:"pbpc_code"`
	Athletes []ActionAthlete `json:"athletes"`
}

type ActionAthlete struct {
	Code string `json:"pbpat_code"`
	Role string `json:"pbpat_role"`
}

// Period returns the first period with the given code (TOT, H1, ...).
func (h HeadToHead) Period(code string) (Period, bool) {
	for _, p := range h.Periods {
		if p.Code == code {
			return p, true
		}
	}
	return Period{}, false
}

// ExtendedInfo returns the value of the first extended info with the given code.
func (h HeadToHead) ExtendedInfo(code string) (string, bool) {
	for _, ei := range h.ExtendedInfos {
		if ei.Code == code {
			return ei.Value.String(), true
		}
	}
	return "", false
}

// EntryValue looks up an event unit entry (FORMATION, POSITION, STARTER, ...).
func EntryValue(entries []Entry, code string) (string, bool) {
	for _, e := range entries {
		if e.Code == code {
			return e.Value.String(), true
		}
	}
	return "", false
}
