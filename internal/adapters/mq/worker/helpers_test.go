package worker_test

import (
	"strconv"

	"github.com/okian/vibe/internal/domain/model"
)

func rosterRow(i int) model.PlayerSeasonTotals {
	f := float64(i + 1)
	return model.PlayerSeasonTotals{
		PlayerID: model.PlayerID(strconv.Itoa(i)),
		GP:       60, MIN: 1200 + 50*f, PTS: 500 + 40*f,
		FGA: 400, FGM: 190, FTA: 100, FTM: 75,
	}
}
