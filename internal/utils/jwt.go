package utils // package utils provides helpers for issuing board tokens

import (
    "errors"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
)

// BoardScope is the only scope a board token carries.
const BoardScope = "board"

// ErrEmptyName is returned when a session is requested without a name.
var ErrEmptyName = errors.New("name is required")

// boardNamespace derives stable board ids from display names.
var boardNamespace = uuid.MustParse("a3d7d6b4-0f0c-4b39-9a40-63b7c8b0c5e2")

// BoardToken is a signed JWT that opens one board, with its expiry.
type BoardToken struct {
    Token   string    `json:"token"`
    Exp     time.Time `json:"expires"`
    BoardID string    `json:"board_id"`
    Name    string    `json:"name"`
}

// BoardIDForName maps a display name to its board id.  Names are trimmed
// and compared case-insensitively, so "Mina" and " mina" share a board.
func BoardIDForName(name string) (string, error) {
    n := strings.ToLower(strings.TrimSpace(name))
    if n == "" {
        return "", ErrEmptyName
    }
    return uuid.NewSHA1(boardNamespace, []byte(n)).String(), nil
}

// NewBoardToken signs an HS256 JWT whose subject is the board of name.
// There is no password: the name only picks which board to open.
func NewBoardToken(secret, name string, ttlMin int) (BoardToken, error) {
    boardID, err := BoardIDForName(name)
    if err != nil {
        return BoardToken{}, err
    }
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   boardID,
        "name":  strings.TrimSpace(name),
        "scope": BoardScope,
        "exp":   exp.Unix(),
        "iat":   now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return BoardToken{}, err
    }
    return BoardToken{Token: signed, Exp: exp, BoardID: boardID, Name: strings.TrimSpace(name)}, nil
}
