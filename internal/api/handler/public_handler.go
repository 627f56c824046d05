package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/api/metrics"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

const (
	defaultOGTitle = "kokoro-wiki"
	ogLineChars    = 32
	ogMaxLines     = 4

	siteTitle       = "kokoro.wiki"
	siteDescription = "Share your thoughts and who you want to connect with"
)

// PublicHandler renders the read-only pages anyone can visit.
type PublicHandler struct {
	public   ports.PublicService
	baseURL  string
	debounce time.Duration
	log      zerolog.Logger
}

func NewPublicHandler(public ports.PublicService, baseURL string, log zerolog.Logger) *PublicHandler {
	return &PublicHandler{
		public:   public,
		baseURL:  strings.TrimRight(baseURL, "/"),
		debounce: 500 * time.Millisecond,
		log:      log,
	}
}

// Home renders the landing page with the username probe.
func (h *PublicHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home.html", homePage{
		pageMeta: pageMeta{
			Title:        siteTitle,
			Description:  siteDescription,
			OGImage:      h.baseURL + "/og",
			CanonicalURL: h.baseURL + "/",
		},
		DebounceMillis: h.debounce.Milliseconds(),
	})
}

// Page renders GET /:username. Non-canonical spellings redirect to the
// lowercase URL; a profile with nothing posted answers 404.
//
// @Summary      Public profile page
// @Tags         public
// @Produce      html
// @Produce      json
// @Param        username  path      string  true   "Username"
// @Param        tz        query     string  false  "IANA timezone for day grouping"
// @Success      200       {object}  publicProfileResponse
// @Success      308
// @Failure      404       {object}  errorResponse
// @Router       /{username} [get]
func (h *PublicHandler) Page(c echo.Context) error {
	raw := c.Param("username")
	canonical := domain.CanonicalUsername(raw)
	if canonical != raw {
		target := publicPath(canonical)
		if q := c.QueryString(); q != "" {
			target += "?" + q
		}
		return c.Redirect(http.StatusPermanentRedirect, target)
	}

	wantsJSON := strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
	loc, err := viewerLocation(c.QueryParam("tz"))
	if err != nil {
		if wantsJSON {
			return err
		}
		loc = time.UTC
	}

	tl, err := h.timeline(c, canonical, loc)
	if errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, domain.ErrValidation) {
		if wantsJSON {
			return domain.ErrProfileNotFound
		}
		return render(c, http.StatusNotFound, "not_found.html", notFoundPage{
			pageMeta: pageMeta{Title: "@" + canonical + " | " + siteTitle},
			Username: canonical,
		})
	}
	if err != nil {
		return err
	}
	if wantsJSON {
		return c.JSON(http.StatusOK, toPublicProfileResponse(tl))
	}

	profile := toProfileResponse(tl.Profile)
	return render(c, http.StatusOK, "profile.html", profilePage{
		pageMeta: h.profileMeta(tl),
		Profile:  profile,
		Location: loc,
		Thoughts: streamSection{Current: tl.Thoughts.Current, Days: pastDays(tl.ThoughtDays, tl.Thoughts.Current)},
		People:   streamSection{Current: tl.People.Current, Days: pastDays(tl.PeopleDays, tl.People.Current)},
	})
}

// Profile returns the public view as JSON.
//
// @Summary      Public profile
// @Tags         public
// @Produce      json
// @Param        username  path      string  true   "Username"
// @Param        tz        query     string  false  "IANA timezone for day grouping"
// @Success      200       {object}  publicProfileResponse
// @Failure      404       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /api/v1/profiles/{username} [get]
func (h *PublicHandler) Profile(c echo.Context) error {
	loc, err := viewerLocation(c.QueryParam("tz"))
	if err != nil {
		return err
	}
	tl, err := h.timeline(c, c.Param("username"), loc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPublicProfileResponse(tl))
}

// OGImage draws the OpenGraph card for a title. A leading "# " is dropped.
//
// @Summary      OpenGraph image
// @Tags         public
// @Produce      image/svg+xml
// @Param        title  query  string  false  "Card title"
// @Success      200
// @Router       /og [get]
func (h *PublicHandler) OGImage(c echo.Context) error {
	return render(c, http.StatusOK, "og.svg", ogImage{Lines: ogLines(c.QueryParam("title"))})
}

func (h *PublicHandler) timeline(c echo.Context, username string, loc *time.Location) (*ports.Timeline, error) {
	start := time.Now()
	tl, err := h.public.Timeline(c.Request().Context(), username, loc)

	result := "ok"
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.PublicViewDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return tl, err
}

func (h *PublicHandler) profileMeta(tl *ports.Timeline) pageMeta {
	display := tl.Profile.DisplayUsername
	if display == "" {
		display = tl.Profile.Username
	}
	meta := pageMeta{
		Title:        "@" + display + " | " + siteTitle,
		CanonicalURL: h.baseURL + publicPath(tl.Profile.Username),
	}

	title := defaultOGTitle
	if cur := tl.Thoughts.Current; cur != nil {
		first, _, _ := strings.Cut(cur.Content, "\n")
		meta.Description = first
		if t := cur.Title(); t != "" {
			title = t
		}
	}
	meta.OGImage = h.baseURL + "/og?title=" + url.QueryEscape(title)
	return meta
}

// viewerLocation resolves the tz query parameter. Empty means UTC.
func viewerLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, &domain.ValidationError{Field: "tz", Message: "tz must be an IANA timezone name"}
	}
	return loc, nil
}

// ogLines strips the heading prefix and word-wraps the title for the card.
func ogLines(title string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultOGTitle
	}
	title = strings.TrimPrefix(title, "# ")

	var lines []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
	}
	for _, word := range strings.Fields(title) {
		for utf8.RuneCountInString(word) > ogLineChars {
			flush()
			r := []rune(word)
			lines = append(lines, string(r[:ogLineChars]))
			word = string(r[ogLineChars:])
		}
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(word) > ogLineChars {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	flush()

	if len(lines) > ogMaxLines {
		lines = lines[:ogMaxLines]
		last := []rune(lines[ogMaxLines-1])
		if len(last) >= ogLineChars {
			last = last[:ogLineChars-1]
		}
		lines[ogMaxLines-1] = string(last) + "…"
	}
	if len(lines) == 0 {
		lines = []string{defaultOGTitle}
	}
	return lines
}
