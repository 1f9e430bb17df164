// Package export renders habit history as an xlsx workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/healthsync/internal/model"
)

// HabitsSheet is the sheet holding one row per habit log.
const HabitsSheet = "Habits"

// HabitsHeader lists the columns of HabitsSheet in order.
var HabitsHeader = []string{
	"Date",
	"Sleep (h)",
	"Exercise (min)",
	"Steps",
	"Water (glasses)",
	"Fruit/Veg (servings)",
	"Mood (1-5)",
	"Stress (1-5)",
	"Meditation (min)",
	"Weight (kg)",
	"Blood Pressure",
	"Heart Rate",
	"Notes",
	"Health Score",
	"Tokens Earned",
}

var columnWidths = []float64{12, 10, 14, 10, 15, 19, 11, 12, 16, 12, 15, 11, 40, 13, 14}

// HabitsWorkbook writes habits, in the order given, to a single-sheet
// workbook and returns the encoded file.  Absent metrics are left blank.
func HabitsWorkbook(habits []model.HabitRecord) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; every return path closes it.

	index, err := f.NewSheet(HabitsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(HabitsHeader))
	for i, h := range HabitsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(HabitsSheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(HabitsHeader), 1)
	if err := f.SetCellStyle(HabitsSheet, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(HabitsSheet, col, col, w); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, h := range habits {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := habitRow(h)
		if err := f.SetSheetRow(HabitsSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(HabitsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func habitRow(h model.HabitRecord) []any {
	bp := ""
	if h.Systolic != nil && h.Diastolic != nil {
		bp = fmt.Sprintf("%d/%d", *h.Systolic, *h.Diastolic)
	}
	notes := ""
	if h.Notes != nil {
		notes = *h.Notes
	}
	return []any{
		h.HabitDate,
		cell(h.SleepHours),
		cell(h.ExerciseMinutes),
		cell(h.Steps),
		cell(h.WaterGlasses),
		cell(h.FruitVegServings),
		cell(h.MoodRating),
		cell(h.StressLevel),
		cell(h.MeditationMinutes),
		cell(h.WeightKg),
		bp,
		cell(h.HeartRate),
		notes,
		h.HealthScoreImpact,
		h.TokensEarned,
	}
}

// cell turns an optional metric into a cell value; nil leaves it empty.
func cell[T int | float64](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
