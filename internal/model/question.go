package model

import "errors"

// QuestionType identifies one of the prompts a board can answer.
type QuestionType string

const (
    QuestionMovie QuestionType = "movie"
    QuestionBook  QuestionType = "book"
    QuestionMusic QuestionType = "music"
)

// ErrUnknownQuestion is returned by ParseQuestion for ids outside the list.
var ErrUnknownQuestion = errors.New("unknown question")

// Question is a prompt shown before a user picks content for the board.
type Question struct {
    ID          QuestionType `json:"id"`
    Title       string       `json:"title"`
    Description string       `json:"description"`
    Icon        string       `json:"icon"`
}

var questions = []Question{
    {
        ID:          QuestionMovie,
        Title:       "가장 인상 깊게 본 영화는 무엇인가요?",
        Description: "당신의 인생 영화를 공유해주세요",
        Icon:        "🎬",
    },
    {
        ID:          QuestionBook,
        Title:       "최근에 읽은 인상적인 책은 무엇인가요?",
        Description: "마음에 남은 구절이나 생각을 함께 나눠주세요",
        Icon:        "📚",
    },
    {
        ID:          QuestionMusic,
        Title:       "지금 이 순간 듣고 싶은 음악은?",
        Description: "당신의 플레이리스트를 구경하고 싶어요",
        Icon:        "🎵",
    },
}

// Questions returns the prompt list in display order.
func Questions() []Question {
    out := make([]Question, len(questions))
    copy(out, questions)
    return out
}

// ParseQuestion looks up a prompt by id.
func ParseQuestion(id string) (Question, error) {
    for _, q := range questions {
        if string(q.ID) == id {
            return q, nil
        }
    }
    return Question{}, ErrUnknownQuestion
}

// Answer pairs a selected prompt with the movie and block chosen for it.
// Building one requires a Question value, so an answer without a selected
// prompt cannot be expressed.
type Answer struct {
    Question Question     `json:"question"`
    Movie    MovieRef     `json:"movie"`
    Variant  BlockVariant `json:"variant"`
}

// NewAnswer validates the variant and returns the answer.  Only the movie
// prompt produces blocks today.
func NewAnswer(q Question, movie MovieRef, v BlockVariant) (Answer, error) {
    if !v.Valid() {
        return Answer{}, ErrUnknownVariant
    }
    if q.ID != QuestionMovie {
        return Answer{}, ErrUnsupportedQuestion
    }
    return Answer{Question: q, Movie: movie, Variant: v}, nil
}

// ErrUnsupportedQuestion is returned when a prompt has no block flow yet.
var ErrUnsupportedQuestion = errors.New("question does not produce movie blocks")
