package pages

import (
	"html/template"

	"github.com/a-h/templ"
	"github.com/templui/pixaro/internal/model"
)

type RegisterForm struct {
	Username string
	Fullname string
	Email    string
	Errors   map[string]string
}

// Register is the landing page with the sign up form.
func Register(form RegisterForm) templ.Component {
	if form.Errors == nil {
		form.Errors = map[string]string{}
	}
	return page("register", "Create your account", form)
}

type LoginForm struct {
	Username string
	Error    string
}

func Login(form LoginForm) templ.Component {
	return page("login", "Log in", form)
}

type FeedView struct {
	Posts   []*model.Post
	Page    int
	HasPrev bool
	HasNext bool
}

func (v FeedView) PrevPage() int { return v.Page - 1 }
func (v FeedView) NextPage() int { return v.Page + 1 }

func Feed(v FeedView) templ.Component {
	return page("feed", "Feed", v)
}

type ProfileView struct {
	User         *model.User
	Posts        []*model.Post
	IsOwnProfile bool
	IsFollowing  bool
}

// Profile renders both the own profile and other users' profiles.
func Profile(v ProfileView) templ.Component {
	title := v.User.Fullname
	if v.IsOwnProfile {
		title = "Your profile"
	}
	return page("profile", title, v)
}

type ContentView struct {
	Title       string
	Summary     string
	Content     template.HTML
	LastUpdated string
}

func (v ContentView) description() string { return v.Summary }

func Content(v ContentView) templ.Component {
	return page("content", v.Title, v)
}

type ErrorView struct {
	Status  int
	Heading string
	Message string
}

func NotFound() templ.Component {
	return Error(ErrorView{Status: 404, Heading: "Page not found", Message: "The page you are looking for does not exist."})
}

func Error(v ErrorView) templ.Component {
	return page("error", v.Heading, v)
}
