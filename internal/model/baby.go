package model

import (
	"golang.org/x/text/cases"
)

// Baby is a configured child record. The tracking service expects the full
// record embedded verbatim inside every event payload, so all fields are
// carried as-is from configuration.
type Baby struct {
	Name         string `json:"name" yaml:"name"`
	DueDay       string `json:"dueDay" yaml:"due_day"`
	Gender       string `json:"gender" yaml:"gender"`
	PictureName  string `json:"pictureName" yaml:"picture_name"`
	DOB          string `json:"dob" yaml:"dob"`
	ObjectID     string `json:"objectID" yaml:"object_id"`
	Timestamp    string `json:"timestamp" yaml:"timestamp"`
	NewFlage     string `json:"newFlage" yaml:"new_flage"`
	BCObjectType string `json:"BCObjectType" yaml:"-"`
}

// Roster is the set of configured babies, keyed case-insensitively by name.
type Roster []Baby

var foldCaser = cases.Fold()

// Find returns the baby whose name matches (Unicode case folding) and
// whether one was found.
func (r Roster) Find(name string) (Baby, bool) {
	want := foldCaser.String(name)
	for _, b := range r {
		if foldCaser.String(b.Name) == want {
			return b, true
		}
	}
	return Baby{}, false
}
