package club

import (
	"fmt"
	"strings"
)

// Resource names one of the four record collections. The value doubles as
// the REST path segment and the local cache key suffix.
type Resource string

const (
	Events       Resource = "events"
	Members      Resource = "members"
	Achievements Resource = "achievements"
	Blog         Resource = "blog"
)

// Resources lists every collection in display order.
var Resources = []Resource{Events, Members, Achievements, Blog}

// ParseResource maps a user supplied name onto a Resource.
func ParseResource(name string) (Resource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "events", "event":
		return Events, nil
	case "members", "member":
		return Members, nil
	case "achievements", "achievement":
		return Achievements, nil
	case "blog", "posts", "blogposts":
		return Blog, nil
	}
	return "", fmt.Errorf("unknown resource %q", name)
}

// Prepends reports whether new records go to the front of the collection.
// Blog posts are kept newest first; everything else is insertion ordered.
func (r Resource) Prepends() bool {
	return r == Blog
}

// Record is implemented by every entity type. T is the concrete value type so
// collections can stay generic without reflection.
type Record[T any] interface {
	Key() ID
	WithKey(ID) T
	Clone() T
	Validate() error
	Resource() Resource
}

// EventType classifies events.
type EventType string

const (
	EventWorkshop EventType = "workshop"
	EventCTF      EventType = "ctf"
	EventSocial   EventType = "social"
)

// EventStatus separates upcoming events from past ones.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventPast     EventStatus = "past"
)

// Event is a scheduled club activity.
type Event struct {
	ID            ID          `json:"id" validate:"required"`
	Title         string      `json:"title" validate:"required"`
	Date          string      `json:"date" validate:"required,isodate"`
	Description   string      `json:"description"`
	Location      string      `json:"location"`
	GoogleFormURL string      `json:"googleFormUrl"`
	Type          EventType   `json:"type" validate:"oneof=workshop ctf social"`
	Status        EventStatus `json:"status" validate:"oneof=upcoming past"`
}

func (e Event) Key() ID { return e.ID }
func (e Event) WithKey(id ID) Event {
	e.ID = id
	return e
}

func (e Event) Clone() Event { return e }
func (e Event) Resource() Resource { return Events }
func (e Event) Validate() error { return validateRecord(Events, e) }

// Socials holds optional profile links.
type Socials struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Member is a club member profile.
type Member struct {
	ID       ID      `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Role     string  `json:"role"`
	Bio      string  `json:"bio"`
	ImageURL string  `json:"imageUrl"`
	Socials  Socials `json:"socials"`
}

func (m Member) Key() ID { return m.ID }
func (m Member) WithKey(id ID) Member {
	m.ID = id
	return m
}

func (m Member) Clone() Member { return m }
func (m Member) Resource() Resource { return Members }
func (m Member) Validate() error { return validateRecord(Members, m) }

// AchievementCategory groups achievements.
type AchievementCategory string

const (
	CategoryCompetition   AchievementCategory = "competition"
	CategoryCertification AchievementCategory = "certification"
	CategoryRecognition   AchievementCategory = "recognition"
)

// Achievement records a competition result, certification or award.
type Achievement struct {
	ID          ID                  `json:"id" validate:"required"`
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	Year        string              `json:"year" validate:"required"`
	Category    AchievementCategory `json:"category" validate:"oneof=competition certification recognition"`
	Rank        string              `json:"rank,omitempty"`
	ImageURL    string              `json:"imageUrl,omitempty"`
}

func (a Achievement) Key() ID { return a.ID }
func (a Achievement) WithKey(id ID) Achievement {
	a.ID = id
	return a
}

func (a Achievement) Clone() Achievement { return a }
func (a Achievement) Resource() Resource { return Achievements }
func (a Achievement) Validate() error { return validateRecord(Achievements, a) }

// BlogPost is a markdown article.
type BlogPost struct {
	ID      ID       `json:"id" validate:"required"`
	Title   string   `json:"title" validate:"required"`
	Date    string   `json:"date" validate:"required,isodate"`
	Excerpt string   `json:"excerpt"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

func (p BlogPost) Key() ID { return p.ID }
func (p BlogPost) WithKey(id ID) BlogPost {
	p.ID = id
	return p
}

func (p BlogPost) Resource() Resource { return Blog }
func (p BlogPost) Validate() error { return validateRecord(Blog, p) }

// Clone copies the tag slice so callers cannot alias stored state.
func (p BlogPost) Clone() BlogPost {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
