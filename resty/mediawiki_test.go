package resty_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/resty"
)

func TestClient_ListCategories(t *testing.T) {
	t.Parallel()

	t.Run("follows continuation tokens across pages", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "query", r.URL.Query().Get("action"))
			require.Equal(t, "allcategories", r.URL.Query().Get("list"))
			require.Equal(t, "2", r.URL.Query().Get("aclimit"))

			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("accontinue") == "" {
				fmt.Fprint(w, `{
					"continue": {"accontinue": "Locations"},
					"query": {"allcategories": [
						{"category": "Characters"},
						{"category": "Creatures"}
					]}
				}`)
				return
			}
			fmt.Fprint(w, `{
				"query": {"allcategories": [
					{"category": "Locations"},
					{"category": "Characters"}
				]}
			}`)
		}))
		defer srv.Close()

		c := resty.NewClient(srv.URL, "wiki.example.com", resty.WithPageLimit(2))

		got, err := c.ListCategories(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://wiki.example.com/wiki/Category:Characters",
			"https://wiki.example.com/wiki/Category:Creatures",
			"https://wiki.example.com/wiki/Category:Locations",
		}, got)
	})

	t.Run("api error payload surfaces as an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"error": {"code": "readapidenied", "info": "You need read permission."}}`)
		}))
		defer srv.Close()

		c := resty.NewClient(srv.URL, "wiki.example.com")

		_, err := c.ListCategories(context.Background())

		require.Error(t, err)
		assert.Equal(t, wikivault.EINTERNAL, wikivault.ErrorCode(err))
	})
}

func TestClient_ListCategoryMembers(t *testing.T) {
	t.Parallel()

	t.Run("keeps only main namespace pages", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "categorymembers", r.URL.Query().Get("list"))
			require.Equal(t, "Category:Characters", r.URL.Query().Get("cmtitle"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"query": {"categorymembers": [
					{"ns": 0, "title": "Luke Skywalker"},
					{"ns": 14, "title": "Category:Jedi"},
					{"ns": 6, "title": "File:Portrait.png"},
					{"ns": 0, "title": "Leia Organa"}
				]}
			}`)
		}))
		defer srv.Close()

		c := resty.NewClient(srv.URL, "wiki.example.com")

		got, err := c.ListCategoryMembers(context.Background(), "https://wiki.example.com/wiki/Category:Characters")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://wiki.example.com/wiki/Luke_Skywalker",
			"https://wiki.example.com/wiki/Leia_Organa",
		}, got)
	})
}

func TestClient_RenderPage(t *testing.T) {
	t.Parallel()

	t.Run("returns rendered html", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "parse", r.URL.Query().Get("action"))
			require.Equal(t, "Luke Skywalker", r.URL.Query().Get("page"))
			require.Equal(t, "2", r.URL.Query().Get("formatversion"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"parse": {"title": "Luke Skywalker", "text": "<div>bio</div>"}}`)
		}))
		defer srv.Close()

		c := resty.NewClient(srv.URL, "wiki.example.com")

		html, err := c.RenderPage(context.Background(), "https://wiki.example.com/wiki/Luke_Skywalker")

		require.NoError(t, err)
		assert.Equal(t, "<div>bio</div>", html)
	})

	t.Run("missing page yields ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"parse": {"title": "Missing", "text": ""}}`)
		}))
		defer srv.Close()

		c := resty.NewClient(srv.URL, "wiki.example.com")

		_, err := c.RenderPage(context.Background(), "https://wiki.example.com/wiki/Missing")

		require.Error(t, err)
		assert.Equal(t, wikivault.ENOTFOUND, wikivault.ErrorCode(err))
	})
}
