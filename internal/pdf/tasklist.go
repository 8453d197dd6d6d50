package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskmaster/internal/models"
)

// TaskListGenerator renders a task list into a PDF document.
type TaskListGenerator interface {
	Generate(ownerName string, tasks []models.Task) ([]byte, error)
}

type taskListGenerator struct{}

func NewTaskListGenerator() TaskListGenerator {
	return &taskListGenerator{}
}

func (g *taskListGenerator) Generate(ownerName string, tasks []models.Task) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Task list", false)
	doc.SetAuthor("TaskMaster", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "Task list", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	sub := fmt.Sprintf("Exported %s", time.Now().Format("2006-01-02 15:04"))
	if ownerName != "" {
		sub = fmt.Sprintf("%s for %s", sub, ownerName)
	}
	doc.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	doc.Ln(4)

	// header row
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(80, 8, "Title", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 8, "Status", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 8, "Due", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 8, "Tags", "1", 1, "L", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		doc.CellFormat(80, 8, t.Title, "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, string(t.Status), "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, due, "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, models.JoinTags(t.Tags), "1", 1, "L", false, 0, "")
	}
	if len(tasks) == 0 {
		doc.CellFormat(170, 8, "No open tasks.", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
