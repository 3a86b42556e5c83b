package model

import "time"

// Version is one immutable snapshot in a presentation's history. Data holds
// the full presentation state at the moment the snapshot was taken.
// Versions are write-once; a presentation's version list is append-only.
type Version struct {
	PresentationID string       `json:"presentation_id"`
	VersionID      string       `json:"version_id"`
	Data           Presentation `json:"version_data"`
	CreatedBy      string       `json:"created_by"`
	CreatedAt      time.Time    `json:"created_at"`
	ChangeSummary  string       `json:"change_summary"`
}

// VersionMeta is the listing view of a version: audit fields only, never the
// payload, so history listings stay cheap.
type VersionMeta struct {
	VersionID     string    `json:"version_id"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	ChangeSummary string    `json:"change_summary"`
}

// Meta projects a full version down to its listing view.
func (v *Version) Meta() VersionMeta {
	return VersionMeta{
		VersionID:     v.VersionID,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
		ChangeSummary: v.ChangeSummary,
	}
}
