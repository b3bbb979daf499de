package model

// Snapshot is every entity collection as read at one point in time.
type Snapshot struct {
	Subjects []Subject `json:"subjects" yaml:"subjects"`
	Tasks    []Task    `json:"tasks" yaml:"tasks"`
	Notes    []Note    `json:"notes" yaml:"notes"`
}

// SubjectIDs returns the set of subject ids present in the snapshot.
func (s Snapshot) SubjectIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Subjects))
	for _, subject := range s.Subjects {
		out[subject.ID] = struct{}{}
	}
	return out
}
