package assembler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rohmanhakim/scores-fixture/internal/document"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
)

const (
	periodTotal     = "TOT"
	periodFirstHalf = "H1"
	infoPeriod      = "PERIOD"
	entryFormation  = "FORMATION"
	entryPosition   = "POSITION"
	entryStarter    = "STARTER"
)

var minutePattern = regexp.MustCompile(`\d{1,3}`)

// fields only keeps values that carry information, so that merging it over a
// template never blanks out a template default.
type fields map[string]any

func (f fields) set(key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case []any:
		if len(v) == 0 {
			return
		}
	case fields:
		if len(v) == 0 {
			return
		}
		value = map[string]any(v)
	}
	f[key] = value
}

// derive computes the values a unit and its result fragment contribute to an
// endpoint body. The fragment wins over the root document's schedule.
func derive(rctx resource.Context, unit document.Unit, h2h document.HeadToHead) map[string]any {
	out := fields{}

	competition := fields{}
	competition.set("name", unit.EventName)
	competition.set("season", rctx.Comp())
	competition.set("round", unit.Round)
	out.set("competition", competition)

	venue := fields{}
	venue.set("name", h2h.Schedule.Venue.Description)
	venue.set("city", city(h2h.Schedule.Location))
	out.set("venue", venue)

	out.set("kickoff", firstNonEmpty(h2h.Schedule.StartDate, unit.Kickoff))
	status, _ := h2h.ExtendedInfo(infoPeriod)
	out.set("status", firstNonEmpty(status, unit.Status))

	home, away := teamNames(unit, h2h)
	teams := fields{}
	teams.set("home", home)
	teams.set("away", away)
	out.set("teams", teams)

	score := fields{}
	if tot, ok := h2h.Period(periodTotal); ok {
		score["home"] = scoreValue(tot.Home.Score)
		score["away"] = scoreValue(tot.Away.Score)
	}
	if h1, ok := h2h.Period(periodFirstHalf); ok {
		score["halfTime"] = map[string]any{
			"home": scoreValue(h1.Home.Score),
			"away": scoreValue(h1.Away.Score),
		}
	}
	out.set("score", score)

	out.set("scorers", scorers(h2h))
	out.set("lineups", lineups(h2h, home, away))

	return out
}

// city prefers the short description, then the last comma separated part of
// the long description ("Parc des Princes, Paris" -> "Paris").
func city(location document.Label) string {
	if location.ShortDescription != "" {
		return location.ShortDescription
	}
	if location.LongDescription == "" {
		return ""
	}
	parts := strings.Split(location.LongDescription, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// teamNames resolves home (start order 1) and away (start order 2) from the
// fragment's start list, then the root document's, then the item order.
func teamNames(unit document.Unit, h2h document.HeadToHead) (string, string) {
	var home, away string
	if len(h2h.Schedule.Start) > 0 {
		for _, s := range h2h.Schedule.Start {
			order, _ := s.StartOrder.Int()
			home, away = assignByOrder(home, away, order, s.Participant.Name)
		}
	} else {
		for _, p := range unit.Participants {
			home, away = assignByOrder(home, away, p.StartOrder, p.Name)
		}
	}
	if (home == "" || away == "") && len(h2h.Items) >= 2 {
		home = h2h.Items[0].Participant.Name
		away = h2h.Items[1].Participant.Name
	}
	return home, away
}

func assignByOrder(home, away string, order int, name string) (string, string) {
	switch order {
	case 1:
		return name, away
	case 2:
		return home, name
	default:
		return home, away
	}
}

func scoreValue(s document.Scalar) int {
	n, _ := s.Int()
	return n
}

func scorers(h2h document.HeadToHead) []any {
	athletes := map[string]string{}
	teams := map[string]string{}
	for _, item := range h2h.Items {
		teams[item.TeamCode] = item.Participant.Name
		for _, member := range item.TeamAthletes {
			athletes[member.ParticipantCode] = firstNonEmpty(member.Athlete.Name, member.Athlete.ShortName)
		}
	}

	out := []any{}
	for _, pbp := range h2h.PlayByPlay {
		for _, action := range pbp.Actions {
			if !isGoal(action) || len(action.Competitors) == 0 {
				continue
			}
			competitor := action.Competitors[0]

			var scorer, assist string
			found := false
			for _, athlete := range competitor.Athletes {
				role := strings.ToUpper(athlete.Role)
				switch {
				case strings.HasPrefix(role, "SCR"):
					scorer, found = athleteName(athletes, athlete.Code), true
				case strings.HasPrefix(role, "ASS"):
					assist = athleteName(athletes, athlete.Code)
				}
			}
			// without role information the first athlete is the scorer
			if !found {
				if len(competitor.Athletes) == 0 {
					continue
				}
				scorer = athleteName(athletes, competitor.Athletes[0].Code)
			}

			entry := map[string]any{
				"team":   firstNonEmpty(teams[competitor.Code], competitor.Code),
				"player": scorer,
				"minute": minute(action.When.String()),
				"type":   goalType(action),
			}
			if assist != "" {
				entry["assist"] = assist
			}
			out = append(out, entry)
		}
	}
	return out
}

func isGoal(action document.Action) bool {
	return strings.Contains(strings.ToUpper(action.Result), "GOAL") || action.Action == "PEN"
}

func goalType(action document.Action) string {
	if strings.Contains(action.Result, "PEN") || action.Period == "PET" || action.Period == "PEN" {
		return "penalty"
	}
	return "open_play"
}

func athleteName(athletes map[string]string, code string) string {
	return firstNonEmpty(athletes[code], code)
}

// minute reads the leading minute of values like "25'" or "105' +3". It is nil
// when the action carries no time.
func minute(when string) any {
	m := minutePattern.FindString(when)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return n
}

// lineups assigns team lineups by name, falling back to item order.
func lineups(h2h document.HeadToHead, home, away string) fields {
	out := fields{}
	for _, item := range h2h.Items {
		switch item.Participant.Name {
		case "":
		case home:
			out["home"] = lineup(item)
		case away:
			out["away"] = lineup(item)
		}
	}
	if _, ok := out["home"]; !ok && len(h2h.Items) > 0 {
		out["home"] = lineup(h2h.Items[0])
	}
	if _, ok := out["away"]; !ok && len(h2h.Items) > 1 {
		out["away"] = lineup(h2h.Items[1])
	}
	return out
}

func lineup(item document.Item) map[string]any {
	l := fields{}
	l.set("team", item.Participant.Name)
	formation, _ := document.EntryValue(item.EventUnitEntries, entryFormation)
	l.set("formation", formation)
	if len(item.TeamCoaches) > 0 {
		l.set("coach", item.TeamCoaches[0].Coach.Name)
	}

	starters := []any{}
	bench := []any{}
	for _, member := range item.TeamAthletes {
		var position any
		if p, ok := document.EntryValue(member.EventUnitEntries, entryPosition); ok {
			position = p
		}
		player := map[string]any{
			"name":     firstNonEmpty(member.Athlete.Name, member.ParticipantCode),
			"number":   shirtNumber(member.Bib),
			"position": position,
		}
		if isStarter(member.EventUnitEntries) {
			starters = append(starters, player)
		} else {
			bench = append(bench, player)
		}
	}
	l.set("startingXI", starters)
	l.set("bench", bench)
	return l
}

func isStarter(entries []document.Entry) bool {
	for _, e := range entries {
		if e.Code == entryStarter && (e.Value == "Y" || e.Value == "1") {
			return true
		}
	}
	return false
}

// shirtNumber is an int for numeric bibs, the raw bib otherwise and nil when
// absent.
func shirtNumber(bib document.Scalar) any {
	if bib == "" {
		return nil
	}
	if n, ok := bib.Int(); ok {
		return n
	}
	return bib.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
