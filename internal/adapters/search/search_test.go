package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "pulse/internal/platform/errors"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  is   octocat \t alive ": "is octocat alive",
		"ｏｃｔｏｃａｔ":                "octocat", // fullwidth folds under NFKC
		"":                       "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q want %q", in, got, want)
		}
	}
}

func TestSearch_BuildsQueryAndFiltersResults(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{"key": q.Get("key"), "cx": q.Get("cx"), "q": q.Get("q"), "num": q.Get("num")}
		_, _ = w.Write([]byte(`{"items":[
			{"title":" A ","link":"https://a","snippet":"first  hit"},
			{"title":"A again","link":"https://a","snippet":"dupe"},
			{"title":"paper","link":"https://b.pdf","snippet":"pdf","mime":"application/pdf"},
			{"title":"C","link":"https://c","snippet":"third"}
		]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, Key: "k", CX: "cx1", Num: 3})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	res, err := c.Search(context.Background(), "  octocat   obituary ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got["key"] != "k" || got["cx"] != "cx1" || got["q"] != "octocat obituary" || got["num"] != "3" {
		t.Fatalf("query params %v", got)
	}
	if len(res) != 2 || res[0].Title != "A" || res[0].Snippet != "first hit" || res[1].Link != "https://c" {
		t.Fatalf("results %+v", res)
	}
}

func TestSearch_Errors(t *testing.T) {
	status := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{`))
	}))
	defer srv.Close()

	c, _ := NewClient(Options{BaseURL: srv.URL})
	ctx := context.Background()

	if _, err := c.Search(ctx, "x"); !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("expected too many requests, got %v", err)
	}
	status = http.StatusInternalServerError
	if _, err := c.Search(ctx, "x"); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	status = http.StatusOK
	if _, err := c.Search(ctx, "x"); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("expected json error, got %v", err)
	}
	if _, err := c.Search(ctx, "   "); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
