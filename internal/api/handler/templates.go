package handler

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

//go:embed templates/*
var templateFS embed.FS

const entryTimeLayout = "Jan 2, 2006, 03:04 PM MST"

// OpenGraph image geometry.
const (
	ogHeight     = 630
	ogLineHeight = 60
	ogFooterGap  = 70
)

var pages = map[string]*template.Template{}

func init() {
	funcMap := template.FuncMap{
		"localTime": func(t time.Time, loc *time.Location) string {
			if loc == nil {
				loc = time.UTC
			}
			return t.In(loc).Format(entryTimeLayout)
		},
		"lineY":   ogLineY,
		"footerY": ogFooterY,
	}

	for _, name := range []string{"home.html", "profile.html", "not_found.html"} {
		pages[name] = template.Must(template.New(name).Funcs(funcMap).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	pages["og.svg"] = template.Must(template.New("og.svg").Funcs(funcMap).
		ParseFS(templateFS, "templates/og.svg"))
}

// ogLineY centres a block of n title lines vertically, leaving room for the footer.
func ogLineY(i, n int) int {
	block := n*ogLineHeight + ogFooterGap
	top := (ogHeight - block) / 2
	return top + ogLineHeight*(i+1) - ogLineHeight/4
}

func ogFooterY(n int) int {
	return ogLineY(n-1, n) + ogFooterGap
}

// pageMeta feeds the shared "head" block.
type pageMeta struct {
	Title        string
	Description  string
	OGImage      string
	CanonicalURL string
}

type homePage struct {
	pageMeta
	DebounceMillis int64
}

type streamSection struct {
	Current *domain.Entry
	Days    []ports.DayGroup
}

type profilePage struct {
	pageMeta
	Profile  profileResponse
	Location *time.Location
	Thoughts streamSection
	People   streamSection
}

type notFoundPage struct {
	pageMeta
	Username string
}

type ogImage struct {
	Lines []string
}

func render(c echo.Context, code int, name string, data any) error {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	if name == "og.svg" {
		c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		return c.Blob(code, "image/svg+xml", buf.Bytes())
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// pastDays drops the current entry from the day groups so the page lists it once.
func pastDays(days []ports.DayGroup, current *domain.Entry) []ports.DayGroup {
	if current == nil {
		return days
	}
	out := make([]ports.DayGroup, 0, len(days))
	for _, d := range days {
		entries := make([]*domain.Entry, 0, len(d.Entries))
		for _, e := range d.Entries {
			if e.ID != current.ID {
				entries = append(entries, e)
			}
		}
		if len(entries) > 0 {
			d.Entries = entries
			out = append(out, d)
		}
	}
	return out
}
