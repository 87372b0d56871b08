package model

import (
	"time"
)

type Difficulty string
type ProblemType string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	ProblemTypeAddition       ProblemType = "addition"
	ProblemTypeSubtraction    ProblemType = "subtraction"
	ProblemTypeMultiplication ProblemType = "multiplication"
	ProblemTypeDivision       ProblemType = "division"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

var ProblemTypes = []ProblemType{
	ProblemTypeAddition,
	ProblemTypeSubtraction,
	ProblemTypeMultiplication,
	ProblemTypeDivision,
}

func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

func (t ProblemType) Valid() bool {
	for _, v := range ProblemTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ProblemSession is one generated question. CorrectAnswer never leaves the server before the problem is answered.
type ProblemSession struct {
	ID            string       `json:"id"`
	ProblemText   string       `json:"problem_text"`
	CorrectAnswer float64      `json:"-"`
	Difficulty    Difficulty   `json:"difficulty"`
	Topic         *string      `json:"topic,omitempty"`
	ProblemType   *ProblemType `json:"problem_type,omitempty"`
	HintsUsed     int          `json:"hints_used"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ProblemView is the read-path projection of a ProblemSession.
type ProblemView struct {
	ProblemText string       `json:"problem_text"`
	Topic       *string      `json:"topic"`
	Difficulty  Difficulty   `json:"difficulty"`
	ProblemType *ProblemType `json:"problem_type"`
}

func (p *ProblemSession) View() ProblemView {
	return ProblemView{
		ProblemText: p.ProblemText,
		Topic:       p.Topic,
		Difficulty:  p.Difficulty,
		ProblemType: p.ProblemType,
	}
}

// Topic is one entry of the topic catalog. Key is the slug of Name.
type Topic struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
