package backup

// DialogKind classifies the conversation a backup captured.
type DialogKind string

const (
	DialogUser    DialogKind = "user"
	DialogGroup   DialogKind = "group"
	DialogChannel DialogKind = "channel"
)

// Dialog identifies one captured conversation. ID and Kind together
// are the lookup key; Name is the display title used for exports.
type Dialog struct {
	ID   string     `json:"id"`
	Kind DialogKind `json:"kind"`
	Name string     `json:"name"`
}

// Key returns the composite lookup key for the dialog.
func (d Dialog) Key() string {
	return string(d.Kind) + ":" + d.ID
}
