package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// An Interview is a branching-question flow definition plus its
// publication and lifecycle metadata. The graph itself lives in Data,
// keyed by question id.
type Interview struct {
	ID           int             `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Creator      int             `db:"creator" json:"creator"`
	Group        int             `db:"group_id" json:"group"`
	Disabled     bool            `db:"disabled" json:"disabled"`
	Locked       bool            `db:"locked" json:"locked"`
	Live         bool            `db:"live" json:"live"`
	CreationDate int64           `db:"creation_date" json:"creation_date"`
	EditURL      string          `db:"edit_url" json:"edit_url"`
	StageURL     string          `db:"stage_url" json:"stage_url"`
	LiveURL      string          `db:"live_url" json:"live_url"`
	Start        string          `db:"start" json:"start"`
	Steps        StringList      `db:"steps" json:"steps"`
	Deliverables DeliverableList `db:"deliverables" json:"deliverables"`
	OnComplete   OnComplete      `db:"on_complete" json:"on_complete"`
	Distance     Distance        `db:"distance" json:"distance"`
	Data         NodeMap         `db:"data" json:"data"`
}

// OnComplete controls what happens when an end user finishes an interview.
type OnComplete struct {
	// When true the client may enter an email at the end of the
	// interview to receive their generated forms.
	EmailDeliverablesToClient bool `json:"email_deliverables_to_client"`
	// Comma-delimited lists of emails.
	EmailNotification string `json:"email_notification"`
	EmailDeliverables string `json:"email_deliverables"`
}

// Distance holds derived graph metadata: an adjacency/weight view of the
// question graph plus a flag marking it stale.
type Distance struct {
	Update bool                      `json:"update"`
	Graph  map[string]map[string]int `json:"graph"`
}

// A Deliverable is a file artifact attached to an interview. Paths are
// relative to the upload root and re-keyed when an interview is cloned.
type Deliverable struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// A QuestionNode is one step in the flow graph: content, outgoing
// choices, denormalized edge lists, and layout metadata.
type QuestionNode struct {
	NumID        int             `json:"_id"`
	QID          string          `json:"qid"`
	Name         string          `json:"name"`
	Step         string          `json:"step"`
	TextID       string          `json:"text_id"`
	QuestionText string          `json:"question_text"`
	Loop1        json.RawMessage `json:"loop1,omitempty"`
	Loop2        json.RawMessage `json:"loop2,omitempty"`
	LearnMore    LearnMore       `json:"learn_more"`
	Buttons      []Button        `json:"buttons"`
	Help         []json.RawMessage `json:"help"`
	SourcePaths      []Path `json:"source_paths"`
	DestinationPaths []Path `json:"destination_paths"`
	Fields   []json.RawMessage `json:"fields"`
	Advanced []json.RawMessage `json:"advanced"`
	Node     Layout            `json:"node"`
}

// LearnMore is free-form help content shown alongside a question.
type LearnMore struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// A Button is an outgoing choice from a question node. Condition, when
// set, is an expression evaluated against collected answers to decide
// whether the choice applies.
type Button struct {
	Type        string `json:"type"`
	Destination string `json:"destination"`
	PID         string `json:"pid"`
	Condition   string `json:"condition,omitempty"`
}

// A Path is a denormalized edge descriptor kept on both its source and
// destination node for rendering.
type Path struct {
	PID         string `json:"pid"`
	S           string `json:"s"`
	D           string `json:"d"`
	Stroke      string `json:"stroke"`
	StrokeWidth string `json:"stroke_width"`
}

// Layout holds canvas hints for the editor.
type Layout struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Fill   string `json:"fill"`
}

// JSONB column wrappers. Postgres hands jsonb back as []byte; these keep
// the sqlx scanning path happy without an intermediate string hop.

type StringList []string

func (l StringList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *StringList) Scan(src any) error          { return scanJSON(src, l) }

type DeliverableList []Deliverable

func (l DeliverableList) Value() (driver.Value, error) { return json.Marshal(l) }
func (l *DeliverableList) Scan(src any) error          { return scanJSON(src, l) }

type NodeMap map[string]QuestionNode

func (m NodeMap) Value() (driver.Value, error) { return json.Marshal(m) }
func (m *NodeMap) Scan(src any) error          { return scanJSON(src, m) }

func (o OnComplete) Value() (driver.Value, error) { return json.Marshal(o) }
func (o *OnComplete) Scan(src any) error          { return scanJSON(src, o) }

func (d Distance) Value() (driver.Value, error) { return json.Marshal(d) }
func (d *Distance) Scan(src any) error          { return scanJSON(src, d) }

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
