package utils

import (
    "errors"
    "testing"

    "github.com/golang-jwt/jwt/v5"
)

func TestBoardIDForName(t *testing.T) {
    a, err := BoardIDForName("Mina")
    if err != nil {
        t.Fatal(err)
    }
    b, _ := BoardIDForName("  mina ")
    if a != b {
        t.Errorf("ids differ for the same name: %s vs %s", a, b)
    }
    c, _ := BoardIDForName("Jun")
    if a == c {
        t.Errorf("different names share a board")
    }
    if _, err := BoardIDForName(" "); !errors.Is(err, ErrEmptyName) {
        t.Errorf("err = %v, want ErrEmptyName", err)
    }
}

func TestNewBoardToken(t *testing.T) {
    tok, err := NewBoardToken("secret", "Mina", 10)
    if err != nil {
        t.Fatal(err)
    }
    parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
    if err != nil || !parsed.Valid {
        t.Fatalf("parse: %v", err)
    }
    claims := parsed.Claims.(jwt.MapClaims)
    if claims["sub"] != tok.BoardID || claims["scope"] != BoardScope || claims["name"] != "Mina" {
        t.Errorf("claims = %v", claims)
    }
    if _, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("other"), nil }); err == nil {
        t.Errorf("token verified with the wrong secret")
    }
}
