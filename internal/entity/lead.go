package entity

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrVersionConflict   = errors.New("lead was modified concurrently")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrMissingContact    = errors.New("at least one of name, phone or email is required")
)

type Status string

const (
	StatusNew       Status = "new"
	StatusScored    Status = "scored"
	StatusContacted Status = "contacted"
	StatusReplied   Status = "replied"
	StatusDemo      Status = "demo"
	StatusConverted Status = "converted"
	StatusArchived  Status = "archived"
)

var AllStatuses = []Status{
	StatusNew, StatusScored, StatusContacted, StatusReplied,
	StatusDemo, StatusConverted, StatusArchived,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusConverted || s == StatusArchived
}

type Source string

const (
	SourceChat        Source = "chat"
	SourceContactForm Source = "contact_form"
	SourceDemoForm    Source = "demo_form"
	SourceSignup      Source = "signup"
	SourceManual      Source = "manual"
	SourceUnknown     Source = "unknown"
)

// ParseSource maps free input onto a known source, defaulting to unknown.
func ParseSource(s string) Source {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceChat, SourceContactForm, SourceDemoForm, SourceSignup, SourceManual:
		return src
	default:
		return SourceUnknown
	}
}

type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
	ChannelLinkedIn Channel = "linkedin"
)

func ParseChannel(s string) (Channel, bool) {
	switch ch := Channel(strings.ToLower(strings.TrimSpace(s))); ch {
	case ChannelWhatsApp, ChannelEmail, ChannelLinkedIn:
		return ch, true
	default:
		return "", false
	}
}

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Contact struct {
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (c Contact) Empty() bool {
	return strings.TrimSpace(c.Phone) == "" &&
		strings.TrimSpace(c.WhatsApp) == "" &&
		strings.TrimSpace(c.Email) == ""
}

type Socials struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
}

func (s Socials) HasAny() bool {
	return s.Instagram != "" || s.Facebook != "" || s.LinkedIn != "" || s.TikTok != ""
}

type Qualification struct {
	HasWebsite    bool `json:"has_website"`
	HasOrdering   bool `json:"has_ordering"`
	HasWhatsApp   bool `json:"has_whatsapp"`
	EstimatedSize Size `json:"estimated_size,omitempty"`
}

type Lead struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city,omitempty"`
	Language     Language `json:"language,omitempty"`
	BusinessType string   `json:"business_type,omitempty"`
	Service      string   `json:"service,omitempty"`
	Contact      Contact  `json:"contact"`
	Socials      Socials  `json:"socials"`
	Source       Source   `json:"source"`

	Qualification Qualification `json:"qualification"`
	Score         int           `json:"score"`
	Priority      Priority      `json:"priority"`

	Status           Status     `json:"status"`
	LastChannel      Channel    `json:"last_channel,omitempty"`
	LastContactedAt  *time.Time `json:"last_contacted_at,omitempty"`
	LastRepliedAt    *time.Time `json:"last_replied_at,omitempty"`
	OutreachAttempts int        `json:"outreach_attempts"`
	Notes            string     `json:"notes,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead assigns identity and scores the qualification snapshot.
func NewLead(partial Lead, now time.Time) (*Lead, error) {
	if strings.TrimSpace(partial.Name) == "" && partial.Contact.Empty() {
		return nil, ErrMissingContact
	}

	lead := partial
	lead.ID = NewLeadID(now)
	lead.Status = StatusNew
	if lead.Source == "" {
		lead.Source = SourceUnknown
	}
	lead.LastContactedAt = nil
	lead.LastRepliedAt = nil
	lead.OutreachAttempts = 0
	lead.Version = 1
	lead.CreatedAt = now
	lead.UpdatedAt = now
	lead.Rescore()

	return &lead, nil
}

// Rescore recomputes score and priority from the current qualification data.
func (l *Lead) Rescore() {
	l.Score, l.Priority = Score(l.Qualification, l.Contact, l.Socials)
}

// AwaitingReply reports the at-most-one-unanswered-outreach condition.
func (l *Lead) AwaitingReply() bool {
	return l.LastContactedAt != nil && l.LastRepliedAt == nil
}

// Clone returns a deep copy, timestamps included.
func (l *Lead) Clone() *Lead {
	c := *l
	if l.LastContactedAt != nil {
		t := *l.LastContactedAt
		c.LastContactedAt = &t
	}
	if l.LastRepliedAt != nil {
		t := *l.LastRepliedAt
		c.LastRepliedAt = &t
	}
	return &c
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewLeadID returns a lexicographically time-ordered identifier.
func NewLeadID(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), idEntropy).String()
}
