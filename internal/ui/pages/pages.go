// Package pages holds the server rendered pages. Each page is an
// html/template file wrapped in the shared layout and exposed as a
// templ.Component.
package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
	"github.com/templui/pixaro/internal/config"
	"github.com/templui/pixaro/internal/ctxkeys"
	"github.com/templui/pixaro/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

var titleCaser = cases.Title(language.English)

var funcs = template.FuncMap{
	"cn":      func(classes ...string) string { return twmerge.Merge(classes...) },
	"title":   titleCaser.String,
	"timeAgo": timeAgo,
	"initial": initial,
	"card":    func(post *model.Post, viewer *model.User) postCard { return postCard{Post: post, Viewer: viewer} },
	"active": func(current, prefix string) string {
		if current == prefix || (prefix != "/" && strings.HasPrefix(current, prefix+"/")) {
			return "active"
		}
		return ""
	},
}

var templates = parse(
	"register", "login", "feed", "profile", "content", "error",
)

func parse(names ...string) map[string]*template.Template {
	base := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))

	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(base.Clone())
		parsed[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return parsed
}

// View is the data every template receives. Data holds the page specific part.
type View struct {
	Title       string
	Description string
	CurrentUser *model.User
	Config      *config.Config
	CSRFToken   string
	Nonce       string
	Path        string
	Data        any
}

// page builds the request scoped View from ctx at render time.
func page(name, title string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := templates[name]
		if !ok {
			return fmt.Errorf("unknown page template %q", name)
		}
		cfg := ctxkeys.Config(ctx)
		if cfg == nil {
			cfg = &config.Config{AppName: "Pixaro"}
		}
		v := View{
			Title:       title,
			CurrentUser: ctxkeys.User(ctx),
			Config:      cfg,
			CSRFToken:   ctxkeys.CSRFToken(ctx),
			Nonce:       templ.GetNonce(ctx),
			Path:        ctxkeys.URLPath(ctx),
			Data:        data,
		}
		if d, ok := data.(interface{ description() string }); ok {
			v.Description = d.description()
		}
		return templ.FromGoHTML(t, v).Render(ctx, w)
	})
}

// postCard pairs a post with the logged in user for the "post" partial.
type postCard struct {
	Post   *model.Post
	Viewer *model.User
}

func (c postCard) Liked() bool {
	return c.Viewer != nil && c.Post.LikedBy(c.Viewer.ID)
}

func (c postCard) Owned() bool {
	return c.Viewer != nil && c.Post.OwnedBy(c.Viewer.ID)
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
