package tmdb

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"
)

func TestSearch(t *testing.T) {
    var gotQuery, gotLang, gotPage, gotKey string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/3/search/movie" {
            http.NotFound(w, r)
            return
        }
        gotQuery = r.URL.Query().Get("query")
        gotLang = r.URL.Query().Get("language")
        gotPage = r.URL.Query().Get("page")
        gotKey = r.URL.Query().Get("api_key")
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(`{"page":1,"total_pages":1,"total_results":1,"results":[
            {"id":129,"title":"센과 치히로의 행방불명","overview":"...","poster_path":"/p.jpg","release_date":"2001-07-20"}]}`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL+"/", "key", "ko-KR", time.Second)
    page, err := c.Search(context.Background(), "  센과 \t 치히로 ", 0)
    if err != nil {
        t.Fatalf("Search: %v", err)
    }
    if gotQuery != "센과 치히로" || gotLang != "ko-KR" || gotPage != "1" || gotKey != "key" {
        t.Errorf("query params = %q %q %q %q", gotQuery, gotLang, gotPage, gotKey)
    }
    if len(page.Results) != 1 || page.Results[0].ID != 129 {
        t.Fatalf("results = %+v", page.Results)
    }
    if got := page.Results[0].PosterURL("w185"); got != "https://image.tmdb.org/t/p/w185/p.jpg" {
        t.Errorf("poster url = %q", got)
    }
}

func TestSearch_EmptyQuery(t *testing.T) {
    c := NewClient("http://unused", "", "", 0)
    if _, err := c.Search(context.Background(), "   ", 1); !errors.Is(err, ErrEmptyQuery) {
        t.Fatalf("err = %v, want ErrEmptyQuery", err)
    }
}

func TestSearch_UpstreamError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
        w.Write([]byte(`{"status_message":"Invalid API key"}`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "bad", "ko-KR", time.Second)
    _, err := c.Search(context.Background(), "akira", 1)
    if err == nil {
        t.Fatal("expected an error")
    }
    if want := "Invalid API key"; !strings.Contains(err.Error(), want) {
        t.Errorf("err = %v, want mention of %q", err, want)
    }
}

func TestSearch_BadJSON(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Write([]byte(`<html>`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "k", "", time.Second)
    if _, err := c.Search(context.Background(), "akira", 1); err == nil {
        t.Fatal("expected a decode error")
    }
}
