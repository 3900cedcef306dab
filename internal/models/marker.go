package models

// QuestionsPerMarker is the number of quiz questions attached to every marker.
const QuestionsPerMarker = 4

// OptionsPerQuestion is the number of answer options of a quiz question.
const OptionsPerQuestion = 4

// Question is a multiple-choice quiz question.
type Question struct {
	Question string                     `json:"question"`
	Options  [OptionsPerQuestion]string `json:"options"`
	Correct  int                        `json:"correct"` // Index of the correct option, 0-3.
}

// Marker is a user-placed point of interest with quiz content.
type Marker struct {
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Coordinates Coordinates                  `json:"coordinates"`
	Questions   [QuestionsPerMarker]Question `json:"questions"`
}
