package drill

// QuestionType is the one-letter type tag carried by every question.
type QuestionType string

const (
	TypeSelectOne       QuestionType = "M" // multiple choice, one correct option
	TypeFillBlank       QuestionType = "F" // fill in the blank from letter/word choices
	TypeSentenceBuilder QuestionType = "D" // drag tokens into blanks, order matters
	TypePictureWord     QuestionType = "P" // four pictures, one word
	TypeMemoryMatch     QuestionType = "G" // memory card pairs
)

type Choice struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	ImageRef  string `json:"image_ref,omitempty"`
	VideoRef  string `json:"video_ref,omitempty"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Token is one target slot of a SentenceBuilder question, in blank order.
type Token struct {
	Text string `json:"text"`
}

// Card is one memory-match card. Cards come in pairs; PairID links the two
// halves but correctness only needs the full ID set matched.
type Card struct {
	ID     int    `json:"id"`
	Word   string `json:"word,omitempty"`
	PairID int    `json:"pair_id,omitempty"`
}

type Question struct {
	ID      string       `json:"id"`
	DrillID string       `json:"drill_id,omitempty"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"prompt"`

	Choices       []Choice `json:"choices,omitempty"`        // SelectOne, FillBlank, PictureWord options
	Answer        string   `json:"answer,omitempty"`         // canonical answer word/token
	BlankPosition int      `json:"blank_position,omitempty"` // FillBlank
	Targets       []Token  `json:"targets,omitempty"`        // SentenceBuilder
	Cards         []Card   `json:"cards,omitempty"`          // MemoryMatch
}

type DrillStatus string

const (
	StatusDraft     DrillStatus = "draft"
	StatusPublished DrillStatus = "published"
)

type Drill struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      DrillStatus `json:"status"`
	CreatedBy   string      `json:"created_by"`
	Questions   []Question  `json:"questions"`
	CreatedAt   int64       `json:"created_at,omitempty"`
}

// Attempt is one run of a drill by one student. RunNumber starts at 1 and is
// strictly increasing per (student, drill); (StudentID, DrillID, RunNumber)
// is unique. Points is a cache of the sum of the attempt's outcome points and
// is recomputed on every outcome write.
type Attempt struct {
	ID          string  `json:"id"`
	DrillID     string  `json:"drill_id"`
	StudentID   string  `json:"student_id"`
	RunNumber   int     `json:"run_number"`
	Points      float64 `json:"points"`
	StartedAt   int64   `json:"started_at"`
	CompletedAt int64   `json:"completed_at,omitempty"` // 0 while in progress
}

// Outcome is the graded record of one answer to one question within one
// attempt. (AttemptID, QuestionID) is unique; resubmitting within the same
// attempt overwrites.
type Outcome struct {
	AttemptID     string  `json:"attempt_id"`
	QuestionID    string  `json:"question_id"`
	Submitted     any     `json:"submitted_answer"`
	IsCorrect     bool    `json:"is_correct"`
	PointsAwarded float64 `json:"points_awarded"`
	TimeTaken     float64 `json:"time_taken,omitempty"` // seconds
	SubmittedAt   int64   `json:"submitted_at"`
}

// Meta carries the client-side signals scoring depends on.
type Meta struct {
	WrongAttempts int `json:"wrong_attempts,omitempty"` // penalty-based types
	Attempts      int `json:"attempts,omitempty"`       // MemoryMatch pairing attempts
}

// Stats is the per-student aggregate the progression ledger evaluates badges
// against. PointsByDrill holds the latest run's points for each drill the
// student has attempted.
type Stats struct {
	PointsByDrill   map[string]float64
	DrillsCompleted int
	CorrectAnswers  int
}

func (s Stats) TotalPoints() float64 {
	var t float64
	for _, p := range s.PointsByDrill {
		t += p
	}
	return t
}
