package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// An Output is a completed end-user submission of an interview.
// Read-only from the manager's perspective.
type Output struct {
	ID          int       `db:"id" json:"id"`
	InterviewID int       `db:"interview_id" json:"interview"`
	Group       int       `db:"group_id" json:"group"`
	Answers     AnswerSet `db:"answers" json:"answers"`
	Date        time.Time `db:"date" json:"date"`
}

// AnswerSet points at the generated answer file for an output. ID is the
// capability hash that must accompany a download request.
type AnswerSet struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Name string `json:"name"`
}

func (a AnswerSet) Value() (driver.Value, error) { return json.Marshal(a) }
func (a *AnswerSet) Scan(src any) error          { return scanJSON(src, a) }
