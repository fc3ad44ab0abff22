// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PlayerID identifies a player within a season. The upstream provider emits
// numeric ids while API clients usually send strings, so both decode.
type PlayerID string

// UnmarshalJSON accepts a JSON string or number.
func (id *PlayerID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("player id: %w", err)
		}
		*id = PlayerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("player id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = PlayerID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = PlayerID(n.String())
	return nil
}

// PlayerSeasonTotals is one player's aggregated regular-season box score as
// delivered by the stats supplier. JSON names follow the supplier's columns.
// Every counting field is a non-negative season aggregate; PlusMinus is signed.
type PlayerSeasonTotals struct {
	PlayerID   PlayerID `json:"PLAYER_ID"`
	PlayerName string   `json:"PLAYER_NAME,omitempty"`
	Team       string   `json:"TEAM_ABBREVIATION,omitempty"`

	GP  float64 `json:"GP"`
	MIN float64 `json:"MIN"`
	PTS float64 `json:"PTS"`

	FGA  float64 `json:"FGA"`
	FGM  float64 `json:"FGM"`
	FG3A float64 `json:"FG3A"`
	FG3M float64 `json:"FG3M"`
	FTA  float64 `json:"FTA"`
	FTM  float64 `json:"FTM"`

	ORB float64 `json:"OREB"`
	DRB float64 `json:"DREB"`
	AST float64 `json:"AST"`
	TOV float64 `json:"TOV"`
	STL float64 `json:"STL"`
	BLK float64 `json:"BLK"`
	PF  float64 `json:"PF"`

	PlusMinus float64 `json:"PLUS_MINUS"`
}
