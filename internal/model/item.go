package model

import "time"

// Item is a lost or found report.
type Item struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	ItemName         string    `json:"item_name"`
	Category         string    `json:"category"`
	Brand            string    `json:"brand,omitempty"`
	IncidentDate     string    `json:"incident_date,omitempty"`
	IncidentTime     string    `json:"incident_time,omitempty"`
	Location         string    `json:"location"`
	ImagePath        string    `json:"image_path,omitempty"`
	Description      string    `json:"description,omitempty"`
	ReportType       string    `json:"report_type"`
	ContactFirstName string    `json:"contact_firstname,omitempty"`
	ContactLastName  string    `json:"contact_lastname,omitempty"`
	ContactPhone     string    `json:"contact_phone,omitempty"`
	ContactEmail     string    `json:"contact_email,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Report types.
const (
	ReportLost  = "Lost"
	ReportFound = "Found"
)

// Item statuses.
const (
	StatusPending   = "Pending Approval"
	StatusPublished = "Published"
	StatusDenied    = "Denied"
	StatusResolved  = "Resolved"
)

// transitions lists the statuses reachable from each status. Re-applying the
// current status is always allowed.
var transitions = map[string][]string{
	StatusPending:   {StatusPublished, StatusDenied},
	StatusPublished: {StatusResolved},
}

// ValidReportType reports whether t is Lost or Found.
func ValidReportType(t string) bool {
	return t == ReportLost || t == ReportFound
}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPublished, StatusDenied, StatusResolved:
		return true
	}
	return false
}

// CanTransition reports whether an item may move from one status to another.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Public reports whether anyone may view the item, not only its reporter
// and admins.
func (i *Item) Public() bool {
	return i.Status == StatusPublished || i.Status == StatusResolved
}
