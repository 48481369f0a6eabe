package flow

import "github.com/DheerG/LogicPull/internal/models"

// StarterSteps is the step list every fresh interview begins with.
var StarterSteps = []string{"Introduction"}

// StarterGraph returns the minimal two-node graph a fresh interview is
// seeded with: q0 connected to q1 by a single path p0.
func StarterGraph() models.NodeMap {
	p0 := models.Path{
		PID:         "p0",
		S:           "q0",
		D:           "q1",
		Stroke:      "#FF9900",
		StrokeWidth: "3",
	}

	return models.NodeMap{
		"q0": {
			NumID:        0,
			QID:          "q0",
			Name:         "First Question",
			Step:         "Introduction",
			TextID:       "qt0",
			QuestionText: "<strong>q0</strong>",
			LearnMore:    models.LearnMore{},
			Buttons: []models.Button{
				{Type: "continue", Destination: "q1", PID: "p0"},
			},
			SourcePaths:      []models.Path{p0},
			DestinationPaths: []models.Path{},
			Node: models.Layout{
				X:      193,
				Y:      25,
				Width:  40,
				Height: 40,
				Fill:   "#c6d5b0",
			},
		},
		"q1": {
			NumID:        1,
			QID:          "q1",
			Name:         "b100",
			Step:         "none",
			TextID:       "qt1",
			QuestionText: "q1",
			LearnMore: models.LearnMore{
				Title: "what is my postal code",
				Body:  "look here for more info",
			},
			Buttons:          []models.Button{},
			SourcePaths:      []models.Path{},
			DestinationPaths: []models.Path{p0},
			Node: models.Layout{
				X:      193,
				Y:      125,
				Width:  40,
				Height: 40,
				Fill:   "#c6d5b0",
			},
		},
	}
}
