package exportservice

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary = "Summary"
	SheetRounds  = "Rounds"
	SheetScores  = "Scores"
)

var (
	roundsHeader = []any{"Round", "Player score", "Opponent score", "Completed"}
	scoresHeader = []any{"Round", "Player", "Type", "Name", "Value"}
)

// RenderScoreSheet writes snap as a workbook with a Summary, a Rounds and a
// Scores sheet.
func RenderScoreSheet(snap *Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetRounds, SheetScores} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRows(f, SheetSummary, summaryRows(snap)); err != nil {
		return nil, err
	}
	if err := f.SetColStyle(SheetSummary, "A", bold); err != nil {
		return nil, err
	}

	rounds := [][]any{roundsHeader}
	for _, r := range snap.Rounds {
		rounds = append(rounds, []any{r.Number, r.PlayerScore, r.OpponentScore, r.IsCompleted})
	}
	if err := writeRows(f, SheetRounds, rounds); err != nil {
		return nil, err
	}

	scores := [][]any{scoresHeader}
	for _, r := range snap.Rounds {
		for _, s := range snap.Scores[r.ID] {
			scores = append(scores, []any{r.Number, snap.Pseudo(s.PlayerID), string(s.Type), s.Name, s.Value})
		}
	}
	if err := writeRows(f, SheetScores, scores); err != nil {
		return nil, err
	}
	for _, sheet := range []string{SheetRounds, SheetScores} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryRows(snap *Snapshot) [][]any {
	g := snap.Game
	var totalPlayer, totalOpponent int
	for _, r := range snap.Rounds {
		totalPlayer += r.PlayerScore
		totalOpponent += r.OpponentScore
	}
	rows := [][]any{
		{"Game", g.ID.String()},
		{"Type", string(g.GameType)},
		{"Points limit", int(g.PointsLimit)},
		{"Status", string(g.Status)},
		{"Mission", deref(g.Mission)},
		{"Rounds", len(snap.Rounds)},
		{"Total player score", totalPlayer},
		{"Total opponent score", totalOpponent},
	}
	if g.PlayerScore != nil && g.OpponentScore != nil {
		rows = append(rows, []any{"Final score", fmt.Sprintf("%d - %d", *g.PlayerScore, *g.OpponentScore)})
	}
	for i, p := range snap.Players {
		rows = append(rows, []any{fmt.Sprintf("Player %d", i+1), p.Pseudo})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
