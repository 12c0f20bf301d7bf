package api

import (
	"encoding/json"
	"fmt"
)

type YearlyStat struct {
	Year    int     `json:"year"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	Draws   int     `json:"draws"`
	Losses  int     `json:"losses"`
	GF      int     `json:"gf"`
	GA      int     `json:"ga"`
	GD      int     `json:"gd"`
	WinRate float64 `json:"win_rate"`
}

type OpponentStat struct {
	Opponent string  `json:"opponent"`
	Played   int     `json:"played"`
	Wins     int     `json:"wins"`
	Draws    int     `json:"draws"`
	Losses   int     `json:"losses"`
	GF       int     `json:"gf"`
	GA       int     `json:"ga"`
	GD       int     `json:"gd"`
	WinRate  float64 `json:"win_rate"`
}

// RaceEntry is one team within a ranked snapshot. The server sends every
// metric it knows (wins, gf, played); they are kept by name.
type RaceEntry struct {
	Team    string
	Metrics map[string]float64
}

func (e *RaceEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Metrics = make(map[string]float64, len(raw))
	for k, v := range raw {
		if k == "team" {
			if err := json.Unmarshal(v, &e.Team); err != nil {
				return fmt.Errorf("race entry team: %w", err)
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			// non-numeric extras are ignored
			continue
		}
		e.Metrics[k] = f
	}
	return nil
}

func (e RaceEntry) Value(metric string) float64 {
	return e.Metrics[metric]
}

type RaceItem struct {
	Year int         `json:"year"`
	Top  []RaceEntry `json:"top"`
}

type Tournament struct {
	Name    string `json:"name"`
	Matches int    `json:"matches"`
}

type YearlyResponse struct {
	Team  string       `json:"team"`
	Items []YearlyStat `json:"items"`
}

type OpponentsResponse struct {
	Team  string         `json:"team"`
	Items []OpponentStat `json:"items"`
}

type RaceResponse struct {
	Metric string     `json:"metric"`
	Top    int        `json:"top"`
	Items  []RaceItem `json:"items"`
}
