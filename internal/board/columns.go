package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taskboard/internal/models"
)

// Column is one status bucket of the board. ID doubles as its drop target.
type Column struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Status models.TaskStatus `json:"status"`
	Tasks  []models.Task     `json:"tasks"`
}

// Group partitions tasks into the fixed columns TODO, IN_PROGRESS, DONE.
// Input order is kept inside a column and empty columns are present.
func Group(tasks []models.Task) []Column {
	cols := make([]Column, len(models.TaskStatuses))
	pos := make(map[models.TaskStatus]int, len(cols))
	for i, s := range models.TaskStatuses {
		cols[i] = Column{
			ID:     string(s),
			Title:  strings.ReplaceAll(string(s), "_", " "),
			Status: s,
			Tasks:  []models.Task{},
		}
		pos[s] = i
	}
	for _, t := range tasks {
		if i, ok := pos[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// Target is where a dragged task was released: a column or another task.
// The zero Target means "released over nothing".
type Target struct {
	column models.TaskStatus
	taskID int64
}

func ColumnTarget(s models.TaskStatus) Target { return Target{column: s} }

func TaskTarget(id int64) Target { return Target{taskID: id} }

func (t Target) IsZero() bool { return t.column == "" && t.taskID == 0 }

func (t Target) String() string {
	switch {
	case t.column != "":
		return string(t.column)
	case t.taskID != 0:
		return strconv.FormatInt(t.taskID, 10)
	}
	return "<none>"
}

var ErrBadTarget = errors.New("invalid drop target")

// ParseTarget reads a drop target id: a column id or a numeric task id.
// An empty string is the zero target.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, nil
	}
	if st := models.TaskStatus(s); st.Valid() {
		return ColumnTarget(st), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Target{}, fmt.Errorf("%w: %q", ErrBadTarget, s)
	}
	return TaskTarget(id), nil
}
